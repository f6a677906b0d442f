package telegram

import (
	"errors"
	"strconv"
	"strings"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

var (
	errUsage       = errors.New("usage")
	errBadTime     = errors.New("bad time")
	errBadPurpose  = errors.New("bad purpose")
	errBadRideID   = errors.New("bad ride id")
	errNoArguments = errors.New("no arguments")
)

type rideArgs struct {
	Origin      string
	Destination string
	Slot        domain.TimeOfDay
	Purpose     domain.Purpose
}

// commandArgs splits "/cmd@bot a b c" into its arguments.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[1:]
}

// parseRideArgs parses "/ride <from> <to> <HH:MM> <purpose>". Purpose is
// checked before time, the same order users see the errors in.
func parseRideArgs(text string) (rideArgs, error) {
	args := commandArgs(text)
	if len(args) < 4 {
		return rideArgs{}, errUsage
	}
	purpose, ok := domain.ParsePurpose(args[3])
	if !ok {
		return rideArgs{}, errBadPurpose
	}
	slot, err := domain.ParseTimeOfDay(args[2])
	if err != nil || slot.Second() != 0 {
		return rideArgs{}, errBadTime
	}
	return rideArgs{Origin: args[0], Destination: args[1], Slot: slot, Purpose: purpose}, nil
}

// parseRideID reads the optional ride id of /cancel and /complete.
func parseRideID(text string) (int64, error) {
	args := commandArgs(text)
	if len(args) == 0 {
		return 0, errNoArguments
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[0], "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadRideID
	}
	return id, nil
}
