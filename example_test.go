// Copyright 2024 The XChaCha20 Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xchacha20_test

import (
	"fmt"

	"github.com/dpwiz/xchacha20"
)

func ExampleXORKeyStream() {
	// Never hardcode a key and nonce like this outside of examples: keys
	// must be secret and a nonce must be unique per message under a key.
	var key [xchacha20.KeySize]byte
	var nonce [xchacha20.NonceSize]byte
	for i := range key {
		key[i] = byte(i)
	}
	for i := range nonce {
		nonce[i] = byte(i)
	}

	buf := []byte("hello xchacha20")
	xchacha20.XORKeyStream(buf, buf, &nonce, &key)
	fmt.Printf("%x\n", buf)

	// The same operation decrypts.
	xchacha20.XORKeyStream(buf, buf, &nonce, &key)
	fmt.Printf("%s\n", buf)
	// Output:
	// 8d5f0da29e71907769671e8b5bedf0
	// hello xchacha20
}

func ExampleGenerateKey() {
	key, err := xchacha20.GenerateKey(nil)
	if err != nil {
		panic(err)
	}
	fmt.Println(len(key))
	// Output:
	// 32
}
