// Package integrations declares the built-in functions exposed to models:
// Open Notify (ISS position, people in space), Nominatim reverse geocoding
// and Tomorrow.io realtime weather.
package integrations

import (
	"context"

	"github.com/fncall/registry"
	"github.com/fncall/transport"
	"github.com/fncall/validate"
)

// Conf holds the endpoints and credentials of the third-party services.
type Conf struct {
	OpenNotifyURL string `mapstructure:"open_notify_url"`
	NominatimURL  string `mapstructure:"nominatim_url"`
	TomorrowIOURL string `mapstructure:"tomorrow_io_url"`
	TomorrowIOKey string `mapstructure:"-"`
}

func DefaultConf() Conf {
	return Conf{
		OpenNotifyURL: "http://api.open-notify.org",
		NominatimURL:  "https://nominatim.openstreetmap.org",
		TomorrowIOURL: "https://api.tomorrow.io/v4",
	}
}

var coordinateParams = []validate.Param{
	{Name: "latitude", Types: []string{validate.TypeNumber, validate.TypeString}, Pattern: validate.NumericPattern, Description: "Latitude in decimal degrees"},
	{Name: "longitude", Types: []string{validate.TypeNumber, validate.TypeString}, Pattern: validate.NumericPattern, Description: "Longitude in decimal degrees"},
}

// Builtin returns the descriptors of every built-in function, calling out
// through client.
func Builtin(client transport.Interface, conf Conf) []registry.FunctionDescriptor {
	return []registry.FunctionDescriptor{
		{
			Name:        "getISSLocation",
			Description: "Get the current location of the International Space Station",
			Callback:    getJSON(client, "getISSLocation", func(validate.Arguments) (string, error) { return issNowURL(conf), nil }),
		},
		{
			Name:        "getPeopleInSpace",
			Description: "Get the number and name of people currently in space",
			Callback:    getJSON(client, "getPeopleInSpace", func(validate.Arguments) (string, error) { return astrosURL(conf), nil }),
		},
		{
			Name:        "getCityByCoordinates",
			Description: "Get the city, county, state and country by latitude and longitude coordinates",
			Parameters:  coordinateParams,
			Required:    []string{"latitude", "longitude"},
			Callback: getJSON(client, "getCityByCoordinates", func(args validate.Arguments) (string, error) {
				return reverseGeocodeURL(conf, args)
			}),
		},
		{
			Name:        "getWeatherByCoordinates",
			Description: "Get the temperature and weather code by latitude and longitude coordinates",
			Parameters:  coordinateParams,
			Required:    []string{"latitude", "longitude"},
			Callback: getJSON(client, "getWeatherByCoordinates", func(args validate.Arguments) (string, error) {
				return realtimeWeatherURL(conf, args)
			}),
		},
	}
}

// getJSON builds a callback issuing a GET to the URL derived from the
// arguments and returning the decoded JSON body.
func getJSON(client transport.Interface, name string, url func(validate.Arguments) (string, error)) registry.Callback {
	return func(ctx context.Context, args validate.Arguments) (any, error) {
		u, err := url(args)
		if err != nil {
			return nil, err
		}
		var out any
		if err := client.Do(ctx, transport.Get(u), &out); err != nil {
			return nil, &registry.RemoteCallError{Function: name, Err: err}
		}
		return out, nil
	}
}
