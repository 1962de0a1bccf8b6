package server

import (
	"errors"
	"testing"
)

func TestIsExpectedTransportError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{errors.New("write tcp 127.0.0.1:8080: broken pipe"), true},
		{errors.New("read tcp 127.0.0.1:8080: connection reset by peer"), true},
		{errors.New("unexpected EOF"), true},
		{errors.New("read tcp 127.0.0.1:8080: i/o timeout"), true},
		{errors.New("accept tcp: use of closed network connection"), true},
		{errors.New("something else entirely"), false},
	}
	for _, tc := range cases {
		if got := isExpectedTransportError(tc.err); got != tc.want {
			t.Errorf("isExpectedTransportError(%q) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
