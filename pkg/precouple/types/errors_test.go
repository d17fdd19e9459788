package types

import (
	"errors"
	"testing"
)

func TestErrors_WrappedSentinelsUnwrapCorrectly(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"config", ConfigError("missing participant"), ErrConfig},
		{"protocol", ProtocolError("Fluid", 0, "unexpected verdict"), ErrProtocol},
		{"transport", TransportError("Structure", errors.New("connection reset")), ErrTransport},
		{"usage", UsageError("unknown data name"), ErrUsage},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if !errors.Is(c.err, c.want) {
				t.Fatalf("errors.Is(%v, %v) = false, want true", c.err, c.want)
			}
		})
	}
}

func TestNumericWarning_StringIncludesWindowAndIteration(t *testing.T) {
	w := NumericWarning{Window: 3, Iteration: 7, Detail: "residual did not shrink"}
	got := w.String()
	if got != "non-convergence at window=3 iteration=7: residual did not shrink" {
		t.Fatalf("unexpected String() output: %q", got)
	}
}
