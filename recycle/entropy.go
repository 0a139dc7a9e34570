// The MIT License (MIT)
//
// # Copyright (c) 2016 xtaci
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package recycle

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/pbkdf2"
)

// Entropy is a source of fair random bits, delivered 64 at a time.
// The pool draws a whole word per refill and slices it down bit by bit.
type Entropy interface {
	// Word returns 64 fresh independent fair bits. A source that can no
	// longer produce bits must panic; the pool cannot continue without them.
	Word() uint64
}

// sysEntropy reads from the operating system CSPRNG.
type sysEntropy struct {
	buf [8]byte
}

// NewSystemEntropy returns the default entropy source backed by crypto/rand.
func NewSystemEntropy() Entropy {
	return &sysEntropy{}
}

func (s *sysEntropy) Word() uint64 {
	if _, err := io.ReadFull(rand.Reader, s.buf[:]); err != nil {
		panic("recycle: system entropy source failed: " + err.Error())
	}
	return binary.LittleEndian.Uint64(s.buf[:])
}

// seededEntropy generates a reproducible bit stream from a ChaCha20 keystream.
// Two processes constructed with the same seed observe identical words, which
// makes every sampler output a deterministic function of the call order.
type seededEntropy struct {
	cipher *chacha20.Cipher
	buf    [8]byte
}

// seedSalt matches the key-derivation salt convention used by the binaries.
const seedSalt = "randomness-recycling"

// NewSeededEntropy derives a ChaCha20 keystream from the given seed phrase
// and serves it as the bit source. Intended for reproducible runs and tests.
func NewSeededEntropy(seed string) Entropy {
	key := pbkdf2.Key([]byte(seed), []byte(seedSalt), 4096, chacha20.KeySize, sha1.New)
	cipher, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSizeX))
	if err != nil {
		panic("recycle: seeded entropy setup failed: " + err.Error())
	}
	return &seededEntropy{cipher: cipher}
}

func (s *seededEntropy) Word() uint64 {
	for i := range s.buf {
		s.buf[i] = 0
	}
	s.cipher.XORKeyStream(s.buf[:], s.buf[:])
	return binary.LittleEndian.Uint64(s.buf[:])
}
