package fs

import (
	"testing"

	"github.com/keks/heartyfs"
	"github.com/keks/heartyfs/device"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newTestFS(t *testing.T, size int64) (*Filesystem, *device.Memory) {
	t.Helper()

	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	dev := device.NewMemory(size)
	fs, err := Format(dev, WithLogger(log))
	require.NoError(t, err)
	t.Cleanup(func() { fs.Close() })

	return fs, dev
}

func snapshot(dev *device.Memory) []byte {
	return append([]byte(nil), dev.Bytes()...)
}

// failingDevice stops accepting writes once armed.
type failingDevice struct {
	*device.Memory
	armed bool
}

var errInjected = errors.New("injected write failure")

func (d *failingDevice) WriteAt(data []byte, off int64) (int, error) {
	if d.armed {
		return 0, errInjected
	}
	return d.Memory.WriteAt(data, off)
}

var _ heartyfs.Device = (*failingDevice)(nil)
