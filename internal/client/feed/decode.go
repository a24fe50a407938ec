package feed

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Kaktotak00p/notes/internal/client/models"
)

// payload is the JSON document the notify_row_change trigger publishes.
type payload struct {
	Type      string          `json:"type"`
	Table     string          `json:"table"`
	Record    json.RawMessage `json:"record"`
	OldRecord json.RawMessage `json:"old_record"`
	Truncated bool            `json:"truncated"`
}

// Notification is a decoded change event. Inserts and updates carry the row
// after the change, deletes the row before it. A truncated notification only
// carries the row's id and owner.
type Notification[T models.Entity] struct {
	Table     string
	Kind      models.ChangeKind
	Entity    T
	Truncated bool
}

var errNoRow = errors.New("notification carries no row")

func Decode[T models.Entity](data []byte) (Notification[T], error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Notification[T]{}, fmt.Errorf("decode notification: %w", err)
	}

	kind, err := models.ParseChangeKind(p.Type)
	if err != nil {
		return Notification[T]{}, err
	}

	row := p.Record
	if kind == models.ChangeDelete {
		row = p.OldRecord
	}
	if len(row) == 0 || string(row) == "null" {
		return Notification[T]{}, fmt.Errorf("%s on %s: %w", kind, p.Table, errNoRow)
	}

	n := Notification[T]{Table: p.Table, Kind: kind, Truncated: p.Truncated}
	if err := json.Unmarshal(row, &n.Entity); err != nil {
		return Notification[T]{}, fmt.Errorf("decode %s row: %w", p.Table, err)
	}
	return n, nil
}
