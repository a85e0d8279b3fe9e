package auth

import (
	"regexp"
	"strings"
)

// OTPLength is the number of digits in a one-time passcode.
const OTPLength = 6

var otpPattern = regexp.MustCompile(`^\d{6}$`)

// EntryState is the fill level of an OTPEntry.
type EntryState int

const (
	EntryEmpty EntryState = iota
	EntryPartiallyFilled
	EntryComplete
)

func (s EntryState) String() string {
	switch s {
	case EntryEmpty:
		return "empty"
	case EntryPartiallyFilled:
		return "partially_filled"
	case EntryComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// ValidOTP reports whether code is exactly six digits.
func ValidOTP(code string) bool {
	return otpPattern.MatchString(code)
}

// OTPEntry models six single-digit input slots and the focused slot.
// It is not safe for concurrent use; Verification serializes access.
type OTPEntry struct {
	slots [OTPLength]string
	focus int
}

func NewOTPEntry() *OTPEntry {
	return &OTPEntry{}
}

// Enter sets slot to value, which must be a single digit or empty. A digit
// moves focus to the next slot. Non-digit input is ignored and reported false.
func (e *OTPEntry) Enter(slot int, value string) bool {
	if slot < 0 || slot >= OTPLength {
		return false
	}
	if len(value) > 1 || (value != "" && (value[0] < '0' || value[0] > '9')) {
		return false
	}
	e.slots[slot] = value
	e.focus = slot
	if value != "" && slot < OTPLength-1 {
		e.focus = slot + 1
	}
	return true
}

// Type enters value into the focused slot.
func (e *OTPEntry) Type(value string) bool {
	return e.Enter(e.focus, value)
}

// Backspace clears the focused slot, or moves focus back when it is already empty.
func (e *OTPEntry) Backspace() {
	if e.slots[e.focus] != "" {
		e.slots[e.focus] = ""
		return
	}
	if e.focus > 0 {
		e.focus--
	}
}

// Paste fills every slot at once when text is exactly six digits.
func (e *OTPEntry) Paste(text string) bool {
	text = strings.TrimSpace(text)
	if !ValidOTP(text) {
		return false
	}
	for i := range e.slots {
		e.slots[i] = text[i : i+1]
	}
	e.focus = OTPLength - 1
	return true
}

// Reset empties every slot and focuses the first one.
func (e *OTPEntry) Reset() {
	e.slots = [OTPLength]string{}
	e.focus = 0
}

func (e *OTPEntry) State() EntryState {
	filled := 0
	for _, s := range e.slots {
		if s != "" {
			filled++
		}
	}
	switch filled {
	case 0:
		return EntryEmpty
	case OTPLength:
		return EntryComplete
	default:
		return EntryPartiallyFilled
	}
}

// Complete reports whether submission is enabled.
func (e *OTPEntry) Complete() bool {
	return e.State() == EntryComplete
}

// Code joins the slots. Empty slots contribute nothing.
func (e *OTPEntry) Code() string {
	return strings.Join(e.slots[:], "")
}

func (e *OTPEntry) Focus() int {
	return e.focus
}

func (e *OTPEntry) Slots() []string {
	out := make([]string, OTPLength)
	copy(out, e.slots[:])
	return out
}
