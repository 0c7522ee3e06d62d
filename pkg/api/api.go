package api

import (
	"encoding/json"
	"time"
)

const (
	PathNonce  = "nonce"
	PathUptime = "uptime"
)

const (
	NonceSize = 128
)

type Message interface {
	Unmarshal([]byte) error
	Marshal() ([]byte, error)
}

type Request interface {
	Message

	Response() Message
	Endpoint() string
	SetNonce([]byte) error
	Nonce() string
}

type UptimeRequest struct {
	NonceValue []byte `json:"nonce"`
}

func (ur *UptimeRequest) Response() Message {
	return &UptimeResponse{}
}

func (ur *UptimeRequest) Endpoint() string {
	return PathUptime
}

func (ur *UptimeRequest) Unmarshal(byt []byte) error {
	return json.Unmarshal(byt, ur)
}

func (ur *UptimeRequest) Nonce() string {
	return string(ur.NonceValue)
}

func (ur *UptimeRequest) SetNonce(nonce []byte) error {
	ur.NonceValue = nonce
	return nil
}

func (ur *UptimeRequest) Marshal() ([]byte, error) {
	return json.Marshal(ur)
}

// UptimeResponse reports a host's uptime. When Available is false no
// strategy could determine it and the other fields are empty.
type UptimeResponse struct {
	Hostname  string    `json:"hostname"`
	Available bool      `json:"available"`
	Uptime    float64   `json:"uptime,omitempty"`
	Strategy  string    `json:"strategy,omitempty"`
	BootTime  time.Time `json:"boot_time,omitempty"`
}

func (ur *UptimeResponse) Duration() time.Duration {
	return time.Duration(ur.Uptime * float64(time.Second))
}

func (ur *UptimeResponse) Unmarshal(byt []byte) error {
	return json.Unmarshal(byt, ur)
}

func (ur *UptimeResponse) Marshal() ([]byte, error) {
	return json.Marshal(ur)
}
