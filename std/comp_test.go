package std

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"testing"
)

func TestCompStreamRoundTrip(t *testing.T) {
	left, right := net.Pipe()
	compWriter := NewCompStream(left)
	compReader := NewCompStream(right)
	t.Cleanup(func() {
		compWriter.Close()
		compReader.Close()
	})

	payload := bytes.Repeat([]byte("8 3 3 0 8 1 4 4 2 7 "), 64)
	readErr := make(chan error, 1)

	go func() {
		buf := make([]byte, len(payload))
		if _, err := io.ReadFull(compReader, buf); err != nil {
			readErr <- fmt.Errorf("read compressed data: %w", err)
			return
		}
		if !bytes.Equal(buf, payload) {
			sample := buf
			if len(sample) > 64 {
				sample = sample[:64]
			}
			readErr <- fmt.Errorf("unexpected payload prefix: %x", sample)
			return
		}
		readErr <- nil
	}()

	writeBuf := append([]byte(nil), payload...)
	if n, err := compWriter.Write(writeBuf); err != nil {
		t.Fatalf("compWriter.Write error: %v", err)
	} else if n != len(writeBuf) {
		t.Fatalf("write returned %d, want %d", n, len(writeBuf))
	}

	if err := compWriter.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	if err := <-readErr; err != nil {
		t.Fatalf("reader error: %v", err)
	}
}

func TestCompStreamRequestLineVisibleImmediately(t *testing.T) {
	left, right := net.Pipe()
	client := NewCompStream(left)
	server := NewCompStream(right)
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	line := (&Request{Sampler: "fldr", Count: 3, Weights: []uint32{1, 2}}).Encode()
	readErr := make(chan error, 1)
	go func() {
		// A single read must surface the whole line without waiting for
		// more writes: Write flushes per call.
		buf := make([]byte, 256)
		n, err := server.Read(buf)
		if err != nil {
			readErr <- err
			return
		}
		if got := string(buf[:n]); got != line {
			readErr <- fmt.Errorf("got %q, want %q", got, line)
			return
		}
		readErr <- nil
	}()

	if _, err := client.Write([]byte(line)); err != nil {
		t.Fatalf("write request: %v", err)
	}
	if err := <-readErr; err != nil {
		t.Fatalf("reader error: %v", err)
	}
}
