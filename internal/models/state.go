package models

import "strings"

// Input states a chat can be waiting in. Arguments follow the name, ":"-separated.
const (
	StateIdle        = ""
	StateWaitLog     = "wait_log" // wait_log:<petID>:<day>
	StateWaitPet     = "wait_pet"
	StateWaitEditPet = "wait_edit_pet" // wait_edit_pet:<petID>
	StateWaitRecord  = "wait_record"   // wait_record:<petID>
	StateWaitVetName = "wait_vet"
	StateWaitTime    = "wait_time"
	StateWaitTZ      = "wait_tz"
	StateWaitPostal  = "wait_postal"
)

// NewState joins a state name and its arguments.
func NewState(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + ":" + strings.Join(args, ":")
}

// ParseState splits a stored state into its name and arguments.
func ParseState(s string) (string, []string) {
	if s == "" {
		return StateIdle, nil
	}
	parts := strings.Split(s, ":")
	return parts[0], parts[1:]
}
