package resource

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Typed exposes an orchestrator through a concrete entity struct. T's
// fields are mapped by their json tag.
type Typed[T any] struct {
	*Orchestrator
}

func NewTyped[T any](o *Orchestrator) *Typed[T] {
	return &Typed[T]{Orchestrator: o}
}

// List decodes the current display list.
func (t *Typed[T]) List() ([]T, error) {
	rows := t.DisplayList()
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v, err := Decode[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Selected decodes the current record; ok is false when nothing is selected.
func (t *Typed[T]) Selected() (v T, ok bool, err error) {
	cur := t.Current()
	if cur == nil {
		return v, false, nil
	}
	v, err = Decode[T](cur)
	return v, err == nil, err
}

func (t *Typed[T]) CreateFrom(ctx context.Context, v T) Result {
	rec, err := Encode(v)
	if err != nil {
		return failure(&Error{Kind: KindValidation, Op: OpCreate, Err: err})
	}
	return t.Create(ctx, rec)
}

func (t *Typed[T]) UpdateFrom(ctx context.Context, id string, v T) Result {
	rec, err := Encode(v)
	if err != nil {
		return failure(&Error{Kind: KindValidation, Op: OpUpdate, Err: err})
	}
	delete(rec, IDField)
	return t.Update(ctx, id, rec)
}

// Decode converts a record into T.
func Decode[T any](r Record) (T, error) {
	var out T
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       timeToStringHook,
		Result:           &out,
	})
	if err != nil {
		return out, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(map[string]any(r)); err != nil {
		return out, fmt.Errorf("failed to decode %s record: %w", reflect.TypeOf(out), err)
	}
	return out, nil
}

// Encode converts T into a record, dropping empty fields tagged omitempty.
func Encode[T any](v T) (Record, error) {
	out := map[string]any{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build encoder: %w", err)
	}
	if err := dec.Decode(v); err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return Record(out), nil
}

func timeToStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	switch t := data.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case *time.Time:
		if t == nil {
			return "", nil
		}
		return t.Format(time.RFC3339Nano), nil
	}
	return data, nil
}
