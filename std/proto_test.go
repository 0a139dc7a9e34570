package std

import "testing"

func TestParseRequestRoundTrip(t *testing.T) {
	req := &Request{Sampler: "alias", Count: 42, Weights: []uint32{3, 1, 4, 1, 5}}
	parsed, err := ParseRequest(req.Encode())
	if err != nil {
		t.Fatalf("ParseRequest returned error: %v", err)
	}
	if parsed.Sampler != req.Sampler || parsed.Count != req.Count {
		t.Fatalf("unexpected header fields: %+v", parsed)
	}
	if len(parsed.Weights) != len(req.Weights) {
		t.Fatalf("weights length %d, want %d", len(parsed.Weights), len(req.Weights))
	}
	for i, w := range req.Weights {
		if parsed.Weights[i] != w {
			t.Fatalf("weights[%d] = %d, want %d", i, parsed.Weights[i], w)
		}
	}
}

func TestParseRequestTolerantWhitespace(t *testing.T) {
	parsed, err := ParseRequest("  cdf   10   5 5 1 \n")
	if err != nil {
		t.Fatalf("ParseRequest returned error: %v", err)
	}
	if parsed.Sampler != "cdf" || parsed.Count != 10 || len(parsed.Weights) != 3 {
		t.Fatalf("unexpected request: %+v", parsed)
	}
}

func TestParseRequestRejectsGarbage(t *testing.T) {
	for _, line := range []string{
		"",
		"\n",
		"cdf\n",
		"cdf 10\n",
		"cdf ten 1 2\n",
		"cdf 10 1 -2\n",
		"cdf 10 1 4294967296\n",
	} {
		if _, err := ParseRequest(line); err == nil {
			t.Fatalf("ParseRequest accepted %q", line)
		}
	}
}
