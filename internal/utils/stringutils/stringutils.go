package stringutils

import (
	"fmt"
)

// INCluse builds the placeholders of an IN list whose first argument is bound
// to $start, e.g. INCluse([a b], 3) returns ["$3", "$4"].
func INCluse[T any](list []T, start int) (placeholders []string, args []any) {
	placeholders = make([]string, len(list))
	args = make([]any, len(list))
	for i, id := range list {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
		args[i] = id
	}

	return placeholders, args
}
