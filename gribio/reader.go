package gribio

import (
	"bufio"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// ReadMessages reads line-streamed grib_dump -j output from r until EOF and
// returns the messages it contains. Lines may be arbitrarily long; the values
// array of a global field is often printed on a single line.
//
// A read error fails the whole call and no messages are returned.
func ReadMessages(r io.Reader) ([]Message, error) {
	acc := &Accumulator{}
	rr := bufio.NewReader(r)
	lineNo := 0
	for {
		line, err := rr.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			acc.Feed(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				acc.Flush()
				msgs := acc.Messages()
				glog.V(1).Infof("read %d messages from %d lines", len(msgs), lineNo)
				return msgs, nil
			}
			return nil, errors.Wrapf(err, "error reading decoder output after line %d", lineNo)
		}
	}
}
