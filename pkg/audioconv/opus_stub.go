//go:build !opus

package audioconv

import (
	"fmt"
	"io"
)

func readOpus(io.ReadSeeker) ([]float32, int, int, error) {
	return nil, 0, 0, fmt.Errorf("%w: opus (build with -tags opus)", ErrUnsupported)
}
