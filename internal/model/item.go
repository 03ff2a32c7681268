package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Item is a todo entry as served by the remote collection.
type Item struct {
	ID        ItemID `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ItemID identifies an item on the server. Servers send either a JSON
// number or a string; numeric ids are written back as numbers.
type ItemID string

func (id ItemID) String() string { return string(id) }

func (id *ItemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("item id: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

func (id ItemID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// Stats counts completed and pending items.
func Stats(items []Item) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
