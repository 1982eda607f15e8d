package server

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrClusterPortPattern is returned when cluster mode is enabled but the
	// configured port is not of the form "<digits>++"
	ErrClusterPortPattern = errors.New(`http cluster expects port format like "3000++"`)
	// ErrInvalidServerID is returned when the worker index cannot be taken
	// from the server id
	ErrInvalidServerID = errors.New("server id has no numeric worker index")
	// ErrPortOutOfRange is returned when the effective port is not a valid
	// TCP port
	ErrPortOutOfRange = errors.New("port out of range")
)

var clusterPortPattern = regexp.MustCompile(`^\d+\+\+$`)

// ResolvePort returns the effective listen port.
//
// Without clustering the configured port is used unchanged. With clustering
// the port must look like "3000++" and the result is the base plus the worker
// index, i.e. the last "-"-separated segment of serverID.
func ResolvePort(port string, isCluster bool, serverID string) (int, error) {
	if !isCluster {
		p, err := strconv.Atoi(port)
		if err != nil {
			return 0, fmt.Errorf("invalid port %q: %w", port, err)
		}
		return checkPort(p)
	}

	if !clusterPortPattern.MatchString(port) {
		return 0, fmt.Errorf("%w, got %q", ErrClusterPortPattern, port)
	}
	base, err := strconv.Atoi(port[:len(port)-2])
	if err != nil {
		return 0, fmt.Errorf("%w, got %q: %w", ErrClusterPortPattern, port, err)
	}

	idx, err := WorkerIndex(serverID)
	if err != nil {
		return 0, err
	}

	return checkPort(base + idx)
}

// WorkerIndex extracts the trailing numeric component of a server id
func WorkerIndex(serverID string) (int, error) {
	segment := serverID[strings.LastIndex(serverID, "-")+1:]
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 || strings.HasPrefix(segment, "+") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidServerID, serverID)
	}
	return idx, nil
}

func checkPort(p int) (int, error) {
	if p < 0 || p > 65535 {
		return 0, fmt.Errorf("%w: %d", ErrPortOutOfRange, p)
	}
	return p, nil
}
