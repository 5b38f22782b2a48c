package model

import (
	"reflect"
	"time"
)

// patchMap collects the non-nil fields of a patch as column updates
type patchMap map[string]interface{}

// set stores the pointed-to value of ptr under column when ptr is non-nil
func (m patchMap) set(column string, ptr interface{}) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	m[column] = v.Elem().Interface()
}

func (m patchMap) stamp(updatedAt time.Time) map[string]interface{} {
	m["updated_at"] = updatedAt
	return m
}
