package utils

import (
	"bytes"
	"encoding/json"
	"time"
)

var jsonNull = []byte("null")

type RFC3339Date struct {
	time.Time
}

func NewRFC3339Date(t time.Time) RFC3339Date {
	return RFC3339Date{Time: t}
}

func (d RFC3339Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}

func (d *RFC3339Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, jsonNull) {
		d.Time = time.Time{}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}

	d.Time = t
	return nil
}
