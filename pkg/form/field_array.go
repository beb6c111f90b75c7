package form

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Row identifies one element of a field array. ID stays with the element
// when rows before it are removed; Index is its current position.
type Row struct {
	ID    string
	Index int
}

// FieldArray manages the rows of a list-valued path.
type FieldArray struct {
	form *Form
	name string
}

// FieldArray returns the controller for the list stored at name.
func (f *Form) FieldArray(name string) *FieldArray {
	return &FieldArray{form: f, name: strings.TrimSpace(name)}
}

// Name returns the array path.
func (a *FieldArray) Name() string {
	return a.name
}

// Fields lists the rows in order.
func (a *FieldArray) Fields() []Row {
	a.form.mu.Lock()
	defer a.form.mu.Unlock()
	list, err := a.listLocked()
	if err != nil {
		return nil
	}
	keys := a.keysLocked(len(list))
	rows := make([]Row, len(keys))
	for i, key := range keys {
		rows[i] = Row{ID: key, Index: i}
	}
	return rows
}

// Len returns the number of rows.
func (a *FieldArray) Len() int {
	a.form.mu.Lock()
	defer a.form.mu.Unlock()
	list, _ := a.listLocked()
	return len(list)
}

// Append adds row at the end and returns its identity.
func (a *FieldArray) Append(row map[string]any) (Row, error) {
	a.form.mu.Lock()
	defer a.form.mu.Unlock()
	list, err := a.listLocked()
	if err != nil {
		return Row{}, err
	}
	keys := a.keysLocked(len(list))

	list = append(list, deepCopy(row))
	if err := setPath(a.form.values, a.name, list); err != nil {
		return Row{}, err
	}
	key := a.freshKeyLocked(keys)
	a.form.rowKeys[a.name] = append(keys, key)
	a.markDirtyLocked(list)
	return Row{ID: key, Index: len(list) - 1}, nil
}

// CanRemove reports whether the row at index offers a remove control. The
// first row never does, which keeps the list non-empty.
func (a *FieldArray) CanRemove(index int) bool {
	return index > 0 && index < a.Len()
}

// Remove deletes the row at index. Later rows keep their keys and move up
// one position together with their field bookkeeping.
func (a *FieldArray) Remove(index int) error {
	a.form.mu.Lock()
	defer a.form.mu.Unlock()
	list, err := a.listLocked()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(list) {
		return fmt.Errorf("%w: %s[%d]", ErrRowOutOfRange, a.name, index)
	}
	if len(list) == 1 {
		return fmt.Errorf("%w: %s", ErrLastRow, a.name)
	}
	keys := a.keysLocked(len(list))

	next := make([]any, 0, len(list)-1)
	next = append(next, list[:index]...)
	next = append(next, list[index+1:]...)
	if err := setPath(a.form.values, a.name, next); err != nil {
		return err
	}

	nextKeys := make([]string, 0, len(keys)-1)
	nextKeys = append(nextKeys, keys[:index]...)
	nextKeys = append(nextKeys, keys[index+1:]...)
	a.form.rowKeys[a.name] = nextKeys

	a.shiftMetaLocked(index)
	a.markDirtyLocked(next)
	return nil
}

// RemoveByID deletes the row carrying id.
func (a *FieldArray) RemoveByID(id string) error {
	index := a.IndexOf(id)
	if index < 0 {
		return fmt.Errorf("%w: %s %q", ErrRowNotFound, a.name, id)
	}
	return a.Remove(index)
}

// IndexOf returns the current position of the row with id, or -1.
func (a *FieldArray) IndexOf(id string) int {
	for _, row := range a.Fields() {
		if row.ID == id {
			return row.Index
		}
	}
	return -1
}

func (a *FieldArray) listLocked() ([]any, error) {
	value, ok := getPath(a.form.values, a.name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotArray, a.name)
	}
	list, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotArray, a.name)
	}
	return list, nil
}

// keysLocked returns the row keys, generating them lazily so they line up
// with the current list length.
func (a *FieldArray) keysLocked(n int) []string {
	keys := a.form.rowKeys[a.name]
	if len(keys) > n {
		keys = keys[:n]
	}
	for len(keys) < n {
		keys = append(keys, a.freshKeyLocked(keys))
	}
	a.form.rowKeys[a.name] = keys
	return keys
}

func (a *FieldArray) freshKeyLocked(existing []string) string {
	for {
		key := a.form.newKey()
		if !containsString(existing, key) {
			return key
		}
	}
}

// shiftMetaLocked drops the bookkeeping of the removed row and moves the
// bookkeeping of later rows up by one. Moved entries get a new sequence so
// validations still running against the old positions are discarded.
func (a *FieldArray) shiftMetaLocked(removed int) {
	prefix := a.name + "."
	type moved struct {
		path string
		meta *fieldMeta
	}
	var moves []moved
	paths := make([]string, 0, len(a.form.meta))
	for path := range a.form.meta {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		idxPart, tail, _ := strings.Cut(rest, ".")
		idx, err := strconv.Atoi(idxPart)
		if err != nil || idx < removed {
			continue
		}
		meta := a.form.meta[path]
		delete(a.form.meta, path)
		if idx == removed {
			continue
		}
		target := prefix + strconv.Itoa(idx-1)
		if tail != "" {
			target += "." + tail
		}
		moves = append(moves, moved{path: target, meta: meta})
	}
	for _, m := range moves {
		m.meta.seq = a.form.nextSeqLocked()
		a.form.meta[m.path] = m.meta
	}
}

func (a *FieldArray) markDirtyLocked(list []any) {
	def, _ := getPath(a.form.defaults, a.name)
	a.form.metaLocked(a.name).dirty = !equalValues(def, list)
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
