package main

// #include <stdlib.h>
import "C"
import (
	"encoding/json"

	"github.com/rs/zerolog"
	"github.com/tagpro-science/tp-dissect/dissect"
)

func marshalToString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{\"error\":\"something went wrong during json Marshal\"}"
	}
	return string(b)
}

func convertForExport(v any) string {
	type export struct {
		Data any `json:"data"`
	}
	return marshalToString(export{
		Data: v,
	})
}

func convertErrorForExport(err error) string {
	type export struct {
		Error string `json:"error"`
	}
	return marshalToString(export{
		Error: err.Error(),
	})
}

// read decodes every match of the bulk file at path.
func read(path string) ([]any, error) {
	in, err := dissect.OpenBulk(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()
	matches, err := dissect.LoadMatches(in, dissect.Range{})
	if err != nil {
		return nil, err
	}
	data := make([]any, 0, len(matches))
	for _, match := range matches {
		m, err := dissect.NewMatchReader(match)
		if err != nil {
			return nil, err
		}
		if err := m.Read(); err != nil {
			return nil, err
		}
		data = append(data, m.Data())
	}
	return data, nil
}

//export dissect_read
func dissect_read(input *C.char) *C.char {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	data, err := read(C.GoString(input))
	if err != nil {
		return C.CString(convertErrorForExport(err))
	}
	return C.CString(convertForExport(data))
}

func main() {}
