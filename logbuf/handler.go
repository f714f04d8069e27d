/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logbuf

// RequestLog is the wire request (type 44): give me every record from
// FromID to ToID, inclusive.
type RequestLog struct {
	Passcode [4]uint64
	FromID   uint64
	ToID     uint64
}

// RequestLogIdRangeFromTx is the wire request (type 46): give me the
// logId range for one transaction in one tick.
type RequestLogIdRangeFromTx struct {
	Passcode [4]uint64
	Tick     uint32
	TxHash   [32]byte
}

// ResponseLogIdRangeFromTx is the wire response (type 47).
type ResponseLogIdRangeFromTx struct {
	FromLogID int64
	Length    int64
}

// Handler serves B4's two request kinds against a Ring's buffer and
// indexes. It never touches a network socket itself; the caller
// (node.Node) hands it already-decoded request structs and gets back the
// response data, leaving wire framing to whatever transport carries it.
type Handler struct {
	ring         *Ring
	passcode     [4]uint64
	maxFrameSize int
}

// NewHandler builds a request handler for ring, accepting only requests
// whose passcode matches passcode, and truncating each response frame to
// at most maxFrameSize bytes (0 means no limit).
func NewHandler(ring *Ring, passcode [4]uint64, maxFrameSize int) *Handler {
	return &Handler{ring: ring, passcode: passcode, maxFrameSize: maxFrameSize}
}

// CheckPasscode reports whether got matches the handler's configured
// passcode.
func (h *Handler) CheckPasscode(got [4]uint64) bool {
	return got == h.passcode
}

// RequestLog returns the raw record bytes for [req.FromID, req.ToID],
// split into one frame for the common case or two frames when the range
// wraps past the end of the ring buffer. A nil result (no frames) means
// the request couldn't be satisfied: bad passcode, unknown ids, or an
// empty range.
func (h *Handler) RequestLog(req RequestLog) [][]byte {
	if !h.CheckPasscode(req.Passcode) {
		return nil
	}
	if req.ToID < req.FromID {
		return nil
	}

	var frames [][]byte
	h.ring.WithReadLock(func() {
		startOffset, startLength, ok := h.ring.ids.Get(req.FromID)
		if !ok {
			return
		}
		endOffset, endLength, ok := h.ring.ids.Get(req.ToID)
		if !ok {
			return
		}

		buf := h.ring.bytes()

		if endOffset >= startOffset {
			frames = [][]byte{h.truncate(buf[startOffset : endOffset+endLength])}
			return
		}

		// The range wraps: the buffer has been reused since FromID was
		// written, so ToID's bytes sit earlier in the buffer than FromID's.
		// Walk forward from FromID until an id's offset drops below
		// startOffset; that's where the prefix ends and the wrapped suffix
		// begins.
		splitOffset, splitLength := startOffset, startLength
		for id := req.FromID; id <= req.ToID; id++ {
			offset, length, ok := h.ring.ids.Get(id)
			if !ok || offset < startOffset {
				break
			}
			splitOffset, splitLength = offset, length
		}

		prefix := h.truncate(buf[startOffset : splitOffset+splitLength])
		suffix := h.truncate(buf[0 : endOffset+endLength])
		frames = [][]byte{prefix, suffix}
	})
	return frames
}

func (h *Handler) truncate(b []byte) []byte {
	if h.maxFrameSize > 0 && len(b) > h.maxFrameSize {
		return b[:h.maxFrameSize]
	}
	return b
}

// RequestLogIdRangeFromTx answers B4's second request kind directly from
// the tx→log index.
func (h *Handler) RequestLogIdRangeFromTx(req RequestLogIdRangeFromTx) ResponseLogIdRangeFromTx {
	if !h.CheckPasscode(req.Passcode) {
		return ResponseLogIdRangeFromTx{FromLogID: -1, Length: -1}
	}
	resp := ResponseLogIdRangeFromTx{FromLogID: -1, Length: -1}
	h.ring.WithReadLock(func() {
		from, length := h.ring.txs.LogIDInfo(req.Tick, req.TxHash)
		resp = ResponseLogIdRangeFromTx{FromLogID: from, Length: length}
	})
	return resp
}
