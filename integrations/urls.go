package integrations

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/fncall/validate"
)

func issNowURL(conf Conf) string { return conf.OpenNotifyURL + "/iss-now.json" }

func astrosURL(conf Conf) string { return conf.OpenNotifyURL + "/astros.json" }

func coordinates(args validate.Arguments) (lat, long string, err error) {
	latF, err := args.Float("latitude")
	if err != nil {
		return "", "", err
	}
	longF, err := args.Float("longitude")
	if err != nil {
		return "", "", err
	}
	return formatCoord(latF), formatCoord(longF), nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func reverseGeocodeURL(conf Conf, args validate.Arguments) (string, error) {
	lat, long, err := coordinates(args)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("lat", lat)
	q.Set("lon", long)
	q.Set("format", "json")
	q.Set("zoom", "10")
	return conf.NominatimURL + "/reverse?" + q.Encode(), nil
}

func realtimeWeatherURL(conf Conf, args validate.Arguments) (string, error) {
	lat, long, err := coordinates(args)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("location", fmt.Sprintf("%s,%s", lat, long))
	q.Set("units", "metric")
	q.Set("apikey", conf.TomorrowIOKey)
	return conf.TomorrowIOURL + "/weather/realtime?" + q.Encode(), nil
}
