package dataservice

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/ayushraiyani0003/HRCentral-sub004/internal/resource"
)

// listPaths are tried in order when data is an object instead of an array
var listPaths = []string{"rows", "items", "records"}

// envelope is a response body reduced to the flat shape
type envelope struct {
	Success bool
	Data    gjson.Result
	Message string
}

// parseEnvelope accepts {success,data,message}, the same wrapped in
// "result", and "error" (string or {message}) in place of "message". A
// body without "success" is successful when it carries data.
func parseEnvelope(body []byte) (envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return envelope{}, resource.ErrNoResponse
	}
	if !gjson.ValidBytes(body) {
		return envelope{}, fmt.Errorf("response is not valid JSON")
	}

	root := gjson.ParseBytes(body)
	if inner := root.Get("result"); inner.IsObject() && (inner.Get("success").Exists() || inner.Get("data").Exists()) {
		root = inner
	}

	env := envelope{Data: root.Get("data")}
	if s := root.Get("success"); s.Exists() {
		env.Success = s.Bool()
	} else {
		env.Success = env.Data.Exists()
	}

	env.Message = root.Get("message").String()
	if env.Message == "" {
		if e := root.Get("error"); e.IsObject() {
			env.Message = e.Get("message").String()
		} else {
			env.Message = e.String()
		}
	}
	return env, nil
}

// record decodes data as a single record; null or absent yields nil.
func (e envelope) record() (resource.Record, error) {
	if !e.Data.Exists() || e.Data.Type == gjson.Null {
		return nil, nil
	}
	if !e.Data.IsObject() {
		return nil, fmt.Errorf("expected an object in data, got %s", e.Data.Type)
	}
	return decodeRecord(e.Data.Raw)
}

// records decodes data as a list, looking inside common wrapper keys.
func (e envelope) records() ([]resource.Record, error) {
	data := e.Data
	if data.IsObject() {
		for _, p := range listPaths {
			if inner := data.Get(p); inner.IsArray() {
				data = inner
				break
			}
		}
	}
	if !data.Exists() || data.Type == gjson.Null {
		return []resource.Record{}, nil
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("expected an array in data, got %s", data.Type)
	}

	out := make([]resource.Record, 0, len(data.Array()))
	var err error
	data.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		var rec resource.Record
		if rec, err = decodeRecord(item.Raw); err != nil {
			return false
		}
		out = append(out, rec)
		return true
	})
	return out, err
}

// decodeRecord keeps numbers exact as json.Number
func decodeRecord(raw string) (resource.Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	rec := resource.Record{}
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if n, ok := rec[resource.IDField].(json.Number); ok {
		rec[resource.IDField] = n.String()
	}
	return rec, nil
}
