package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fncall/codec"
	"github.com/fncall/logger"
	"github.com/fncall/types"

	"github.com/google/uuid"
)

// Caller answers one call request; *handlers.Service implements it.
type Caller interface {
	Call(ctx context.Context, req *types.CallRequest) (int, types.CallResponse)
}

const maxLine = 1 << 20

// Serve reads one JSON call request per line from in and writes one JSON
// response per line to out, until in is exhausted or ctx is done.
func Serve(ctx context.Context, in io.Reader, out io.Writer, caller Caller) error {
	log := logger.NewLogger("Stdio", uuid.NewString())
	enc := json.NewEncoder(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var resp types.CallResponse
		req, err := codec.DecodeCallRequest(bytes.NewReader(line))
		if err != nil {
			resp = types.CallResponse{Error: "Invalid request: " + err.Error(), Messages: []types.Message{}}
		} else {
			var code int
			code, resp = caller.Call(ctx, req)
			if code != http.StatusOK {
				log.Warn("call failed", "status", code, "error", resp.Error)
			}
		}

		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Error("STDIO scanner error", "error", err)
		return err
	}
	return nil
}
