package core

import (
	"errors"
	"strings"
)

var ErrEmptyCAU = errors.New("empty CAU")

// InstallationDetails describes a self-consumption solar installation
// attached to the billing account. All values are display text as served.
type InstallationDetails struct {
	CAU                 string `json:"cau"`
	RequestStatus       string `json:"request_status"`
	SelfConsumptionType string `json:"self_consumption_type"`
	Compensation        string `json:"compensation"`
	Power               string `json:"power"`
}

func (d InstallationDetails) Validate() error {
	if strings.TrimSpace(d.CAU) == "" {
		return ErrEmptyCAU
	}
	return nil
}
