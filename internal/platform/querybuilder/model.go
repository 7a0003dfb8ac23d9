package querybuilder

import (
	"reflect"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
)

// column maps a db tag to the struct field that carries it.
type column struct {
	name  string
	index int
}

var layouts sync.Map // reflect.Type -> []column

// UpsertModel renders an upsert of model's db-tagged fields, overwriting every
// column outside conflictTarget when the row already exists.
func UpsertModel(table string, model any, conflictTarget ...string) (string, []any, error) {
	value, cols, err := inspect(model)
	if err != nil {
		return "", nil, err
	}

	names := make([]string, len(cols))
	values := make([]any, len(cols))
	for i, col := range cols {
		names[i] = col.name
		values[i] = value.Field(col.index).Interface()
	}
	return InsertInto(table).Columns(names...).Values(values...).OnConflictUpdate(conflictTarget).ToSQL()
}

// Columns lists model's db-tagged columns in field order.
func Columns(model any) ([]string, error) {
	_, cols, err := inspect(model)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.name
	}
	return names, nil
}

func inspect(model any) (reflect.Value, []column, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return reflect.Value{}, nil, crerr.New("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, nil, crerr.Newf("model must be a struct, got %s", value.Kind())
	}

	if cached, ok := layouts.Load(value.Type()); ok {
		return value, cached.([]column), nil
	}
	cols := layoutOf(value.Type())
	if len(cols) == 0 {
		return reflect.Value{}, nil, crerr.Newf("%s has no db columns", value.Type())
	}
	layouts.Store(value.Type(), cols)
	return value, cols, nil
}

func layoutOf(typ reflect.Type) []column {
	var cols []column
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, column{name: name, index: i})
	}
	return cols
}
