// Package pubkey defines the 32-byte account-identity type shared by every
// DLOB component. The corpus carries no base58 dependency, so this hex
// encodes rather than inventing one (see DESIGN.md).
package pubkey

import "encoding/hex"

const Size = 32

type PublicKey [Size]byte

var Default PublicKey

func FromBytes(b []byte) PublicKey {
	var pk PublicKey
	copy(pk[:], b)
	return pk
}

func (pk PublicKey) String() string {
	return hex.EncodeToString(pk[:])
}

func (pk PublicKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PublicKey) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	copy(pk[:], b)
	return nil
}

func (pk PublicKey) IsZero() bool {
	return pk == Default
}
