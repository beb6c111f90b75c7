package form_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/validation"
)

func sequentialKeys() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("row-%d", n)
	}
}

func newRowsForm(t *testing.T) (*form.Form, *form.FieldArray) {
	t.Helper()
	f := form.New(map[string]any{
		"phNumbers": []any{map[string]any{"number": ""}},
	}, form.WithKeyGenerator(sequentialKeys()))
	f.Register("phNumbers.*.number", form.Rules(validation.NewSet(validation.Required("Number is required"))))
	return f, f.FieldArray("phNumbers")
}

func rowIDs(rows []form.Row) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.ID
	}
	return out
}

func TestFieldArray_AppendAssignsFreshKeys(t *testing.T) {
	f, rows := newRowsForm(t)

	first := rows.Fields()
	if len(first) != 1 || first[0].ID != "row-1" {
		t.Fatalf("unexpected initial rows: %+v", first)
	}

	added, err := rows.Append(map[string]any{"number": ""})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if added.ID == first[0].ID || added.Index != 1 {
		t.Fatalf("unexpected appended row: %+v", added)
	}
	if v, _ := f.GetValue("phNumbers.1.number"); v != "" {
		t.Fatalf("appended row should be blank, got %v", v)
	}
	if !f.State().IsDirty {
		t.Fatalf("appending a row must dirty the form")
	}
}

func TestFieldArray_AppendSkipsDuplicateKeys(t *testing.T) {
	keys := []string{"a", "a", "b"}
	f := form.New(map[string]any{"rows": []any{""}}, form.WithKeyGenerator(func() string {
		key := keys[0]
		keys = keys[1:]
		return key
	}))
	rows := f.FieldArray("rows")

	if _, err := rows.Append(nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "b"}, rowIDs(rows.Fields())); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldArray_RemoveKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	f, rows := newRowsForm(t)
	for i := 0; i < 3; i++ {
		if _, err := rows.Append(map[string]any{"number": ""}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	for i, number := range []string{"100", "", "300", "400"} {
		if err := f.Change(ctx, fmt.Sprintf("phNumbers.%d.number", i), number); err != nil {
			t.Fatalf("change: %v", err)
		}
	}
	if err := f.Blur(ctx, "phNumbers.1.number"); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if err := f.Blur(ctx, "phNumbers.3.number"); err != nil {
		t.Fatalf("blur: %v", err)
	}

	before := rowIDs(rows.Fields())
	if err := rows.Remove(1); err != nil {
		t.Fatalf("remove: %v", err)
	}

	want := []string{before[0], before[2], before[3]}
	if diff := cmp.Diff(want, rowIDs(rows.Fields())); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	got := f.GetValues("phNumbers.0.number", "phNumbers.1.number", "phNumbers.2.number")
	if diff := cmp.Diff([]any{"100", "300", "400"}, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	if msg := f.Error("phNumbers.1.number"); msg != "" {
		t.Fatalf("removed row error leaked onto its successor: %q", msg)
	}
	if got := f.FieldStatus("phNumbers.2.number"); got != form.StatusValid {
		t.Fatalf("touched state of the last row should move with it, got %q", got)
	}
	if got := f.FieldStatus("phNumbers.3.number"); got != form.StatusUntouched {
		t.Fatalf("old position should have no state, got %q", got)
	}
}

func TestFieldArray_RemoveGuards(t *testing.T) {
	_, rows := newRowsForm(t)

	if err := rows.Remove(0); !errors.Is(err, form.ErrLastRow) {
		t.Fatalf("expected ErrLastRow, got %v", err)
	}
	if err := rows.Remove(5); !errors.Is(err, form.ErrRowOutOfRange) {
		t.Fatalf("expected ErrRowOutOfRange, got %v", err)
	}
	if err := rows.RemoveByID("missing"); !errors.Is(err, form.ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
	if rows.CanRemove(0) {
		t.Fatalf("first row must not be removable")
	}

	added, err := rows.Append(map[string]any{"number": ""})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !rows.CanRemove(added.Index) {
		t.Fatalf("appended row should be removable")
	}
	if err := rows.RemoveByID(added.ID); err != nil {
		t.Fatalf("remove by id: %v", err)
	}
	if rows.Len() != 1 {
		t.Fatalf("expected one row left, got %d", rows.Len())
	}
}

func TestFieldArray_NotArray(t *testing.T) {
	f := form.New(map[string]any{"name": ""})
	if _, err := f.FieldArray("name").Append(nil); !errors.Is(err, form.ErrNotArray) {
		t.Fatalf("expected ErrNotArray, got %v", err)
	}
}

func TestFieldArray_ResetRegeneratesKeys(t *testing.T) {
	f, rows := newRowsForm(t)
	if _, err := rows.Append(map[string]any{"number": ""}); err != nil {
		t.Fatalf("append: %v", err)
	}
	before := rowIDs(rows.Fields())

	f.Reset()

	after := rows.Fields()
	if len(after) != 1 {
		t.Fatalf("expected one row after reset, got %d", len(after))
	}
	for _, id := range before {
		if after[0].ID == id {
			t.Fatalf("reset should issue a fresh key, reused %q", id)
		}
	}
}
