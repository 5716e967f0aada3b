// Package scanner adapts bufio.SplitFunc to splitters that sometimes consume
// input without producing a token.
//
// A stock bufio.Scanner stops when a SplitFunc returns a nil token at EOF,
// so a splitter that wants to discard a chunk (advance past it) and keep
// scanning has to run its own inner loop. The multipart boundary splitter is
// exactly that kind of splitter: a boundary line is consumed but is not
// itself a part. MakeSplitFuncExitByAdvance moves that inner loop here, so
// the wrapped SplitFunc can treat "advanced but nothing to emit" as a normal
// step instead of a termination signal.
package scanner

import (
	"bufio"
	"errors"
)

// ErrContinue tells the wrapper to loop for another token even though the
// wrapped SplitFunc's return would otherwise end the scan. A splitter
// returns it while switching internal states on the same data.
var ErrContinue = errors.New("split func continue")

// MakeSplitFuncExitByAdvance wraps split so that scanning terminates on
// advance instead of on a nil token: the wrapper keeps calling split,
// discarding tokenless advances, until split emits a token, stops advancing,
// consumes the rest of the data, or fails.
func MakeSplitFuncExitByAdvance(split bufio.SplitFunc) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		totalAdvance := 0
		for {
			advance, token, err := split(data, atEOF)

			// Exit conditions, unless split asked to continue:
			// token ready; advance == 0 (split is awaiting more input, or at
			// EOF would never finish); all data consumed (when !atEOF the
			// contract says len(data) == 0 happens only at EOF, so stop
			// rather than call split with empty data); over-consumed, which
			// is an error the caller should see; or split failed.
			if !errors.Is(err, ErrContinue) && (token != nil || advance == 0 || len(data)-advance <= 0 || err != nil) {
				// Inner advances must accumulate or the scanner would
				// re-scan bytes split already consumed.
				return totalAdvance + advance, token, err
			}

			data = data[advance:]
			totalAdvance += advance
		}
	}
}
