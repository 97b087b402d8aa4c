package deb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// signMembers produces a debsigs-style origin signature: an ASCII-armored
// detached PGP signature over the concatenated archive members, in container
// order. The result is embedded as the _gpgorigin member.
func signMembers(key string, members ...[]byte) ([]byte, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(key))
	if err != nil {
		return nil, err
	}
	var signer *openpgp.Entity
	for _, e := range entities {
		if e.PrivateKey != nil {
			signer = e
			break
		}
	}
	if signer == nil {
		return nil, fmt.Errorf("no private key found")
	}

	var msg bytes.Buffer
	for _, m := range members {
		msg.Write(m)
	}

	var out bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&out, signer, bytes.NewReader(msg.Bytes()), nil); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
