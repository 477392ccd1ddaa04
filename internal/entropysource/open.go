package entropysource

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

// ErrUnknownSource is returned by Open for a spec with an unsupported kind.
var ErrUnknownSource = errors.New("unknown entropy source")

// Kind names a family of sources that can be opened from a spec string.
type Kind string

const (
	KindSystem   Kind = "system"
	KindMock     Kind = "mock"
	KindChaCha20 Kind = "chacha20"
	KindConstant Kind = "constant"
	KindFile     Kind = "file"
	KindBlob     Kind = "blob"
)

// Kinds returns every supported source kind along with its spec syntax.
func Kinds() map[Kind]string {
	return map[Kind]string{
		KindSystem:   "system",
		KindMock:     "mock[:seed]",
		KindChaCha20: "chacha20[:64 hex digit key]",
		KindConstant: "constant:0xNN",
		KindFile:     "file:<path>",
		KindBlob:     "blob:<key>@<bucket url>",
	}
}

// KindOf returns the kind named by spec, without checking that it is
// supported.
func KindOf(spec string) Kind {
	kind, _, _ := strings.Cut(spec, ":")
	return Kind(strings.ToLower(kind))
}

// closer pairs a Source with the resources backing it.
type closer struct {
	*Reader
	closers []io.Closer
}

func (c *closer) Close() error {
	var errs []error
	for _, cl := range c.closers {
		errs = append(errs, cl.Close())
	}
	return errors.Join(errs...)
}

// Close releases src if it holds resources (files, buckets). It is safe to
// call on any Source.
func Close(src Source) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

/*
Open returns the Source described by spec, which has the form "kind" or
"kind:argument":

	system                     operating system CSPRNG
	mock[:seed]                deterministic LCG (default seed 42)
	chacha20[:key]             ChaCha20 keystream, 32 byte hex key (default all zero)
	constant:0xNN              a single repeated byte
	file:<path>                bytes read from a file or device
	blob:<key>@<bucket url>    bytes read from a gocloud blob object

Sources opened from files or buckets must be released with Close.
*/
func Open(ctx context.Context, spec string) (Source, error) {
	_, arg, hasArg := strings.Cut(spec, ":")
	switch KindOf(spec) {
	case KindSystem:
		return System{}, nil
	case KindMock:
		seed := uint64(DefaultMockSeed)
		if hasArg {
			var err error
			if seed, err = strconv.ParseUint(arg, 0, 64); err != nil {
				return nil, fmt.Errorf("invalid mock seed %q: %w", arg, err)
			}
		}
		return NewMock(seed), nil
	case KindChaCha20:
		key := make([]byte, 32)
		if hasArg {
			var err error
			if key, err = hex.DecodeString(arg); err != nil {
				return nil, fmt.Errorf("invalid chacha20 key: %w", err)
			}
		}
		return NewChaCha20(key)
	case KindConstant:
		v, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid constant byte %q: %w", arg, err)
		}
		return Constant(v), nil
	case KindFile:
		if arg == "" {
			return nil, errors.New("file source requires a path")
		}
		f, err := os.Open(arg)
		if err != nil {
			return nil, err
		}
		return &closer{Reader: NewReader(f, "File "+arg), closers: []io.Closer{f}}, nil
	case KindBlob:
		return openBlob(ctx, arg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, spec)
	}
}

func openBlob(ctx context.Context, arg string) (Source, error) {
	key, bucketURL, ok := strings.Cut(arg, "@")
	if !ok || key == "" || bucketURL == "" {
		return nil, fmt.Errorf("blob source must be <key>@<bucket url>, got %q", arg)
	}
	bkt, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", bucketURL, err)
	}
	r, err := bkt.NewReader(ctx, key, nil)
	if err != nil {
		bkt.Close()
		return nil, fmt.Errorf("failed to open %s in %s: %w", key, bucketURL, err)
	}
	return &closer{
		Reader:  NewReader(r, "Blob "+bucketURL+"/"+key),
		closers: []io.Closer{r, bkt},
	}, nil
}
