package cleanup

import (
	"errors"
	"strings"
	"testing"
)

func TestRunAll_LIFOAndJoin(t *testing.T) {
	var order []string
	Register("monitor", func() error { order = append(order, "monitor"); return nil })
	Register("nil", nil)
	Register("instance", func() error { order = append(order, "instance"); return errors.New("socket busy") })

	err := RunAll()
	if err == nil || !strings.Contains(err.Error(), "instance: socket busy") {
		t.Fatalf("RunAll() error = %v", err)
	}
	if strings.Join(order, ",") != "instance,monitor" {
		t.Fatalf("order = %v", order)
	}
	if err := RunAll(); err != nil {
		t.Fatalf("second RunAll() = %v, want nil", err)
	}
}
