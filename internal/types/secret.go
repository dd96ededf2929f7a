package types

import (
	"encoding/json"
	"log/slog"
)

// SecretString holds a credential such as a store DSN or the cache password.
// Printing or marshaling it yields "[REDACTED]", so config dumps and log
// lines never carry the value; Value returns it for the driver.
type SecretString struct {
	value string
}

func NewSecretString(value string) SecretString {
	return SecretString{value: value}
}

// Value returns the raw credential.
func (s SecretString) Value() string {
	return s.value
}

// String implements fmt.Stringer. An unset secret prints as "".
func (s SecretString) String() string {
	return s.redacted()
}

// GoString keeps %#v from exposing the value.
func (s SecretString) GoString() string {
	return "SecretString(" + s.redacted() + ")"
}

// LogValue implements slog.LogValuer.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(s.redacted())
}

func (s SecretString) redacted() string {
	if s.value == "" {
		return ""
	}
	return "[REDACTED]"
}

func (s SecretString) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.redacted())
}

// UnmarshalJSON reads the plain value, so config files carry DSNs as strings.
func (s *SecretString) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	s.value = value
	return nil
}

func (s SecretString) IsEmpty() bool {
	return s.value == ""
}
