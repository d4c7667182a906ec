package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valyala/fastjson"
)

var parserPool fastjson.ParserPool

// ParseFeed extracts earthquakes from a GeoJSON feed body.
//
// A blank body returns a nil slice and no error, meaning "no data". Otherwise
// the returned slice is never nil: when parsing stops early it holds the
// records built before the failing feature, and the *ParseError says where
// and why parsing stopped.
func ParseFeed(body string) ([]Earthquake, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}

	p := parserPool.Get()
	defer parserPool.Put(p)

	quakes := []Earthquake{}

	root, err := p.Parse(body)
	if err != nil {
		return quakes, &ParseError{Kind: MalformedJSON, Index: -1, Err: err}
	}
	if root.Type() != fastjson.TypeObject {
		return quakes, &ParseError{Kind: MalformedJSON, Index: -1, Err: fmt.Errorf("top level is %s, want object", root.Type())}
	}

	features := root.Get("features")
	if features == nil || features.Type() != fastjson.TypeArray {
		return quakes, &ParseError{Kind: MalformedJSON, Index: -1, Field: "features", Err: errors.New("missing features array")}
	}
	items, err := features.Array()
	if err != nil {
		return quakes, &ParseError{Kind: MalformedJSON, Index: -1, Field: "features", Err: err}
	}

	quakes = make([]Earthquake, 0, len(items))
	for i, item := range items {
		q, perr := parseFeature(item)
		if perr != nil {
			perr.Index = i
			return quakes, perr
		}
		quakes = append(quakes, q)
	}
	return quakes, nil
}

func parseFeature(item *fastjson.Value) (Earthquake, *ParseError) {
	if item.Type() != fastjson.TypeObject {
		return Earthquake{}, &ParseError{Kind: MalformedJSON, Err: fmt.Errorf("feature is %s, want object", item.Type())}
	}
	props := item.Get("properties")
	if props == nil || props.Type() != fastjson.TypeObject {
		return Earthquake{}, &ParseError{Kind: MissingField, Field: "properties"}
	}

	mag, err := requiredField(props, "mag").Float64()
	if err != nil {
		return Earthquake{}, &ParseError{Kind: MissingField, Field: "mag", Err: err}
	}
	millis, err := requiredField(props, "time").Int64()
	if err != nil {
		return Earthquake{}, &ParseError{Kind: MissingField, Field: "time", Err: err}
	}
	detail, err := requiredField(props, "url").StringBytes()
	if err != nil {
		return Earthquake{}, &ParseError{Kind: MissingField, Field: "url", Err: err}
	}

	var place string
	if v := props.Get("place"); v != nil && v.Type() == fastjson.TypeString {
		place = string(v.GetStringBytes())
	}

	return Earthquake{
		Magnitude:  mag,
		Place:      place,
		TimeMillis: millis,
		DetailURL:  string(detail),
	}, nil
}

// missing stands in for an absent property so the typed accessors report
// the problem instead of dereferencing nil.
var missing = fastjson.MustParse("null")

func requiredField(props *fastjson.Value, key string) *fastjson.Value {
	if v := props.Get(key); v != nil {
		return v
	}
	return missing
}
