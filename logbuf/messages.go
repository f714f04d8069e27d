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

import (
	"github.com/qubic-labs/ticklog/constants"
	"github.com/qubic-labs/ticklog/wire"
)

// QuTransfer is the logged payload for a balance transfer between two
// entities.
type QuTransfer struct {
	Source      [32]byte
	Destination [32]byte
	Amount      int64
}

func (m QuTransfer) encode() []byte {
	buf := make([]byte, 72)
	wire.PutHash(buf, m.Source)
	wire.PutHash(buf[32:], m.Destination)
	wire.PutUint64(buf[64:], uint64(m.Amount))
	return buf
}

// AssetIssuance is the logged payload when a new asset is created.
type AssetIssuance struct {
	Issuer                [32]byte
	Amount                int64
	Name                  [7]byte
	NumberOfDecimalPlaces int8
	UnitOfMeasurement     [7]byte
}

func (m AssetIssuance) encode() []byte {
	buf := make([]byte, 55)
	wire.PutHash(buf, m.Issuer)
	wire.PutUint64(buf[32:], uint64(m.Amount))
	copy(buf[40:47], m.Name[:])
	buf[47] = byte(m.NumberOfDecimalPlaces)
	copy(buf[48:55], m.UnitOfMeasurement[:])
	return buf
}

// assetTransfer is the shared shape of AssetOwnershipChange and
// AssetPossessionChange: both move shares of an already-issued asset
// between two entities.
type assetTransfer struct {
	Source                [32]byte
	Destination            [32]byte
	Issuer                 [32]byte
	AssetName              [7]byte
	NumberOfDecimalPlaces  int8
	UnitOfMeasurement      [7]byte
	NumberOfShares         int64
}

func (m assetTransfer) encode() []byte {
	buf := make([]byte, 119)
	wire.PutHash(buf, m.Source)
	wire.PutHash(buf[32:], m.Destination)
	wire.PutHash(buf[64:], m.Issuer)
	copy(buf[96:103], m.AssetName[:])
	buf[103] = byte(m.NumberOfDecimalPlaces)
	copy(buf[104:111], m.UnitOfMeasurement[:])
	wire.PutUint64(buf[111:], uint64(m.NumberOfShares))
	return buf
}

// AssetOwnershipChange is the logged payload when legal ownership of asset
// shares moves between entities.
type AssetOwnershipChange assetTransfer

// AssetPossessionChange is the logged payload when possession (as
// opposed to ownership) of asset shares moves between entities.
type AssetPossessionChange assetTransfer

// Burning is the logged payload when balance is destroyed rather than
// transferred.
type Burning struct {
	Source [32]byte
	Amount int64
}

func (m Burning) encode() []byte {
	buf := make([]byte, 40)
	wire.PutHash(buf, m.Source)
	wire.PutUint64(buf[32:], uint64(m.Amount))
	return buf
}

// ContractMessage is the shared shape of the four contract log levels
// (error/warning/info/debug): a contract index, a contract-defined
// sub-type, and an opaque payload. The contract index occupies the first
// four bytes of the logged record so a reader can filter by contract
// without decoding the rest.
type ContractMessage struct {
	ContractIndex uint32
	Type          uint32
	Data          []byte
}

func (m ContractMessage) encode() []byte {
	buf := make([]byte, 8+len(m.Data))
	wire.PutUint32(buf, m.ContractIndex)
	wire.PutUint32(buf[4:], m.Type)
	copy(buf[8:], m.Data)
	return buf
}

// CustomMessage is an arbitrary caller-defined payload, logged verbatim.
type CustomMessage struct {
	Data []byte
}

func (m CustomMessage) encode() []byte {
	return append([]byte(nil), m.Data...)
}

// LogQuTransfer appends a QU_TRANSFER record.
func (r *Ring) LogQuTransfer(m QuTransfer) (uint64, error) {
	return r.Append(constants.MsgQuTransfer, m.encode())
}

// LogAssetIssuance appends an ASSET_ISSUANCE record.
func (r *Ring) LogAssetIssuance(m AssetIssuance) (uint64, error) {
	return r.Append(constants.MsgAssetIssuance, m.encode())
}

// LogAssetOwnershipChange appends an ASSET_OWNERSHIP_CHANGE record.
func (r *Ring) LogAssetOwnershipChange(m AssetOwnershipChange) (uint64, error) {
	return r.Append(constants.MsgAssetOwnershipChange, assetTransfer(m).encode())
}

// LogAssetPossessionChange appends an ASSET_POSSESSION_CHANGE record.
func (r *Ring) LogAssetPossessionChange(m AssetPossessionChange) (uint64, error) {
	return r.Append(constants.MsgAssetPossessionChange, assetTransfer(m).encode())
}

// LogBurning appends a BURNING record.
func (r *Ring) LogBurning(m Burning) (uint64, error) {
	return r.Append(constants.MsgBurning, m.encode())
}

// LogCustom appends a CUSTOM record.
func (r *Ring) LogCustom(m CustomMessage) (uint64, error) {
	return r.Append(constants.MsgCustom, m.encode())
}

// logContract is shared by the four contract-log-level wrappers below.
// contractIndex is written into msg, the record is appended, and the
// field is always zeroed afterward — regardless of whether the caller's
// build even wants contract-error logging turned on, matching the
// original's write-then-zero convention.
func (r *Ring) logContract(messageType uint8, contractIndex uint32, msg *ContractMessage) (uint64, error) {
	msg.ContractIndex = contractIndex
	defer func() { msg.ContractIndex = 0 }()
	return r.Append(messageType, msg.encode())
}

// LogContractError appends a CONTRACT_ERROR record.
func (r *Ring) LogContractError(contractIndex uint32, msg *ContractMessage) (uint64, error) {
	return r.logContract(constants.MsgContractError, contractIndex, msg)
}

// LogContractWarning appends a CONTRACT_WARNING record.
func (r *Ring) LogContractWarning(contractIndex uint32, msg *ContractMessage) (uint64, error) {
	return r.logContract(constants.MsgContractWarning, contractIndex, msg)
}

// LogContractInfo appends a CONTRACT_INFO record.
func (r *Ring) LogContractInfo(contractIndex uint32, msg *ContractMessage) (uint64, error) {
	return r.logContract(constants.MsgContractInfo, contractIndex, msg)
}

// LogContractDebug appends a CONTRACT_DEBUG record.
func (r *Ring) LogContractDebug(contractIndex uint32, msg *ContractMessage) (uint64, error) {
	return r.logContract(constants.MsgContractDebug, contractIndex, msg)
}
