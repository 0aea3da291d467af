package validator

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type Validator struct {
	Error map[string]string
}

func New() *Validator {
	return &Validator{Error: make(map[string]string)}
}

func (v *Validator) IsValid() bool {
	return len(v.Error) == 0
}

func (v *Validator) AddError(key, message string) {
	if _, exists := v.Error[key]; !exists {
		v.Error[key] = message
	}
}

func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// String lists the errors as "key: message" pairs sorted by key.
func (v *Validator) String() string {
	pairs := make([]string, 0, len(v.Error))
	for _, key := range slices.Sorted(maps.Keys(v.Error)) {
		pairs = append(pairs, fmt.Sprintf("%s: %s", key, v.Error[key]))
	}
	return strings.Join(pairs, ", ")
}
