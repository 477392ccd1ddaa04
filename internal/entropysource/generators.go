package entropysource

import (
	"crypto/rand"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20"
)

// System reads from the operating system's cryptographically secure generator.
type System struct{}

// Fill implements Source.
func (System) Fill(p []byte) error {
	if _, err := io.ReadFull(rand.Reader, p); err != nil {
		return fmt.Errorf("system entropy: %w", err)
	}
	return nil
}

// Name implements Namer.
func (System) Name() string {
	return "System RNG (" + runtime.GOOS + ")"
}

// DefaultMockSeed is the seed used by the "mock" source spec when none is given.
const DefaultMockSeed = 42

// Mock is a deterministic linear congruential generator using the glibc
// constants. It is predictable by construction and only useful as a known
// baseline and in tests.
type Mock struct {
	state   uint64
	initial uint64
}

// NewMock returns a Mock seeded with seed.
func NewMock(seed uint64) *Mock {
	return &Mock{state: seed, initial: seed}
}

func (m *Mock) next() byte {
	m.state = m.state*1103515245 + 12345
	return byte(m.state >> 24)
}

// Fill implements Source.
func (m *Mock) Fill(p []byte) error {
	for i := range p {
		p[i] = m.next()
	}
	return nil
}

// Name implements Namer.
func (m *Mock) Name() string {
	return "Mock RNG (for testing only)"
}

// Reset implements Resetter.
func (m *Mock) Reset() {
	m.state = m.initial
}

// ChaCha20 produces the ChaCha20 keystream for a fixed key and nonce.
type ChaCha20 struct {
	key    [chacha20.KeySize]byte
	nonce  [chacha20.NonceSize]byte
	cipher *chacha20.Cipher
}

// NewChaCha20 returns a keystream source for key (32 bytes) and an all-zero nonce.
func NewChaCha20(key []byte) (*ChaCha20, error) {
	if len(key) != chacha20.KeySize {
		return nil, fmt.Errorf("chacha20 key must be %d bytes, got %d", chacha20.KeySize, len(key))
	}
	c := &ChaCha20{}
	copy(c.key[:], key)
	if err := c.init(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ChaCha20) init() error {
	cipher, err := chacha20.NewUnauthenticatedCipher(c.key[:], c.nonce[:])
	if err != nil {
		return fmt.Errorf("chacha20: %w", err)
	}
	c.cipher = cipher
	return nil
}

// Fill implements Source.
func (c *ChaCha20) Fill(p []byte) error {
	clear(p)
	c.cipher.XORKeyStream(p, p)
	return nil
}

// Name implements Namer.
func (c *ChaCha20) Name() string {
	return "ChaCha20 keystream"
}

// Reset implements Resetter. The key and nonce were validated on
// construction, so re-initialising cannot fail.
func (c *ChaCha20) Reset() {
	_ = c.init()
}

// Constant repeats a single byte value. Its samples are the degenerate
// baseline every test should reject.
type Constant byte

// Fill implements Source.
func (c Constant) Fill(p []byte) error {
	for i := range p {
		p[i] = byte(c)
	}
	return nil
}

// Name implements Namer.
func (c Constant) Name() string {
	return fmt.Sprintf("Constant 0x%02X", byte(c))
}
