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

package tickstore

import (
	"errors"

	"github.com/qubic-labs/ticklog/constants"
	"github.com/qubic-labs/ticklog/wire"
)

// transactionHeaderSize is the fixed portion of an encoded transaction:
// source key, destination key, amount, tick, input type and input size.
const transactionHeaderSize = 32 + 32 + 8 + 4 + 2 + 2

// Transaction is a mixed fixed/variable-size record stored in the
// transaction blob arena (C3): a fixed header followed by Input, whose
// length is carried in the header itself.
type Transaction struct {
	SourcePublicKey      [32]byte
	DestinationPublicKey [32]byte
	Amount               int64
	Tick                 uint32
	InputType            uint16
	InputSize            uint16
	Input                []byte
}

// TotalSize is the number of bytes this transaction occupies in the blob
// arena once encoded.
func (t *Transaction) TotalSize() uint64 {
	return uint64(transactionHeaderSize) + uint64(len(t.Input))
}

var (
	ErrTransactionInputSizeMismatch = errors.New("tickstore: declared input size does not match input bytes")
	ErrTransactionTooLarge          = errors.New("tickstore: transaction exceeds the configured maximum size")
)

// CheckValidity reports whether t is self-consistent and fits within the
// configured maximum transaction size.
func (t *Transaction) CheckValidity(p constants.Params) error {
	if int(t.InputSize) != len(t.Input) {
		return ErrTransactionInputSizeMismatch
	}
	if t.TotalSize() > p.MaxTransactionSize {
		return ErrTransactionTooLarge
	}
	return nil
}

// Encode serializes t into its packed on-arena representation.
func (t *Transaction) Encode() []byte {
	buf := make([]byte, t.TotalSize())
	wire.PutHash(buf, t.SourcePublicKey)
	wire.PutHash(buf[32:], t.DestinationPublicKey)
	wire.PutUint64(buf[64:], uint64(t.Amount))
	wire.PutUint32(buf[72:], t.Tick)
	wire.PutUint16(buf[76:], t.InputType)
	wire.PutUint16(buf[78:], t.InputSize)
	copy(buf[transactionHeaderSize:], t.Input)
	return buf
}

var ErrTransactionOutOfRange = errors.New("tickstore: transaction offset out of range")

// DecodeTransactionAt reads one transaction out of blob starting at
// offset, bounds-checking both the fixed header and the trailing input.
func DecodeTransactionAt(blob []byte, offset uint64) (*Transaction, error) {
	if offset+transactionHeaderSize > uint64(len(blob)) {
		return nil, ErrTransactionOutOfRange
	}
	header := blob[offset:]
	inputSize := wire.Uint16(header[78:])
	total := uint64(transactionHeaderSize) + uint64(inputSize)
	if offset+total > uint64(len(blob)) {
		return nil, ErrTransactionOutOfRange
	}

	tx := &Transaction{
		SourcePublicKey:      wire.Hash(header),
		DestinationPublicKey: wire.Hash(header[32:]),
		Amount:               int64(wire.Uint64(header[64:])),
		Tick:                 wire.Uint32(header[72:]),
		InputType:            wire.Uint16(header[76:]),
		InputSize:            inputSize,
	}
	if inputSize > 0 {
		tx.Input = append([]byte(nil), blob[offset+transactionHeaderSize:offset+total]...)
	}
	return tx, nil
}
