package monitor

import "time"

type Status struct {
	PostgreSQL bool      `json:"postgresql"`
	Redis      bool      `json:"redis"`
	Keystore   bool      `json:"keystore"`
	LastCheck  time.Time `json:"last_check"`
}
