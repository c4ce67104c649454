package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/smallyu/go-ethsig/pkg/ethsig"
	"github.com/smallyu/go-ethsig/pkg/signer"
)

type signatureOutput struct {
	V         uint64 `json:"v"`
	R         string `json:"r"`
	S         string `json:"s"`
	Signature string `json:"signature"`
}

func newSignatureOutput(sig *ethsig.Signature) signatureOutput {
	b := sig.Bytes()
	return signatureOutput{
		V:         sig.V,
		R:         "0x" + hex.EncodeToString(b[:32]),
		S:         "0x" + hex.EncodeToString(b[32:64]),
		Signature: "0x" + hex.EncodeToString(b),
	}
}

func decodeHex(name, s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid hex in --%s", name)
	}
	return b, nil
}

func (a *app) hexFlag(name string) ([]byte, error) {
	s := a.v.GetString(name)
	if s == "" {
		return nil, fmt.Errorf("--%s is required", name)
	}
	return decodeHex(name, s)
}

func (a *app) message() ([]byte, error) {
	msg := a.v.GetString("message")
	if a.v.GetBool("hex") {
		return decodeHex("message", msg)
	}
	return []byte(msg), nil
}

func (a *app) prefixOptions() []signer.CallOption {
	if a.v.GetBool("no-prefix") {
		return []signer.CallOption{signer.WithoutPrefix()}
	}
	return nil
}

// signature reads either --signature (r ‖ s ‖ v, 65 bytes) or --r, --s and
// --v.
func (a *app) signature() (*ethsig.Signature, error) {
	if a.v.GetString("signature") != "" {
		b, err := a.hexFlag("signature")
		if err != nil {
			return nil, err
		}
		if len(b) != 65 {
			return nil, errors.New("--signature must be 65 bytes")
		}
		return &ethsig.Signature{
			R: new(big.Int).SetBytes(b[:32]),
			S: new(big.Int).SetBytes(b[32:64]),
			V: uint64(b[64]),
		}, nil
	}

	r, err := a.hexFlag("r")
	if err != nil {
		return nil, err
	}
	s, err := a.hexFlag("s")
	if err != nil {
		return nil, err
	}
	return &ethsig.Signature{
		R: new(big.Int).SetBytes(r),
		S: new(big.Int).SetBytes(s),
		V: a.v.GetUint64("v"),
	}, nil
}

func addMessageFlags(cmd *cobra.Command) {
	cmd.Flags().String("message", "", "message to sign or check")
	cmd.Flags().Bool("hex", false, "treat --message as hex encoded bytes")
	cmd.Flags().Bool("no-prefix", false, "hash the raw message instead of the eth_sign form")
}

func addSignatureFlags(cmd *cobra.Command) {
	cmd.Flags().String("signature", "", "65-byte signature r || s || v in hex")
	cmd.Flags().String("r", "", "signature r in hex")
	cmd.Flags().String("s", "", "signature s in hex")
	cmd.Flags().Uint64("v", 27, "signature v")
}

func (a *app) pubkeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pubkey",
		Short: "Derive the compressed public key of a private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.hexFlag("key")
			if err != nil {
				return err
			}
			pub, err := a.signer.PublicKey(key)
			if err != nil {
				return err
			}
			addr, err := a.signer.Address(pub)
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{
				"publicKey": "0x" + hex.EncodeToString(pub),
				"address":   addr,
			})
		},
	}
	cmd.Flags().String("key", "", "32-byte private key in hex")
	return cmd
}

func (a *app) addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Derive the checksummed address of a public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.hexFlag("pubkey")
			if err != nil {
				return err
			}
			addr, err := a.signer.Address(pub)
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{"address": addr})
		},
	}
	cmd.Flags().String("pubkey", "", "compressed or uncompressed public key in hex")
	return cmd
}

func (a *app) compressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compress <pubkey>",
		Short: "Convert a public key to its 33-byte form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := decodeHex("pubkey", args[0])
			if err != nil {
				return err
			}
			out, err := a.signer.Compress(pub)
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{"publicKey": "0x" + hex.EncodeToString(out)})
		},
	}
}

func (a *app) decompressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decompress <pubkey>",
		Short: "Convert a public key to its 65-byte form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := decodeHex("pubkey", args[0])
			if err != nil {
				return err
			}
			out, err := a.signer.Decompress(pub)
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{"publicKey": "0x" + hex.EncodeToString(out)})
		},
	}
}

func (a *app) signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.hexFlag("key")
			if err != nil {
				return err
			}
			msg, err := a.message()
			if err != nil {
				return err
			}

			opts := a.prefixOptions()
			if a.v.GetBool("random") {
				opts = append(opts, signer.Randomized())
			}
			if a.v.IsSet("chain-id") {
				opts = append(opts, signer.WithChainID(a.v.GetUint64("chain-id")))
			}

			sig, err := a.signer.Sign(msg, key, opts...)
			if err != nil {
				return err
			}
			return output(cmd, newSignatureOutput(sig))
		},
	}
	cmd.Flags().String("key", "", "32-byte private key in hex")
	cmd.Flags().Bool("random", false, "use a random nonce instead of RFC6979")
	cmd.Flags().Uint64("chain-id", 0, "EIP-155 chain id folded into v")
	addMessageFlags(cmd)
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a message signature against a public key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.hexFlag("pubkey")
			if err != nil {
				return err
			}
			msg, err := a.message()
			if err != nil {
				return err
			}
			sig, err := a.signature()
			if err != nil {
				return err
			}
			ok, err := a.signer.Verify(msg, sig, pub, a.prefixOptions()...)
			if err != nil {
				return err
			}
			return output(cmd, map[string]bool{"valid": ok})
		},
	}
	cmd.Flags().String("pubkey", "", "compressed or uncompressed public key in hex")
	addMessageFlags(cmd)
	addSignatureFlags(cmd)
	return cmd
}

func (a *app) recoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Recover the signer of a message",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.message()
			if err != nil {
				return err
			}
			sig, err := a.signature()
			if err != nil {
				return err
			}
			pub, err := a.signer.RecoverPublicKey(msg, sig, a.prefixOptions()...)
			if err != nil {
				return err
			}
			addr, err := a.signer.Address(pub)
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{
				"publicKey": "0x" + hex.EncodeToString(pub),
				"address":   addr,
			})
		},
	}
	addMessageFlags(cmd)
	addSignatureFlags(cmd)
	return cmd
}

func (a *app) tweakCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tweak",
		Short: "Add a tweak to a private or public key",
	}

	private := &cobra.Command{
		Use:   "private",
		Short: "Compute (key + tweak) mod n",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.hexFlag("key")
			if err != nil {
				return err
			}
			tweak, err := a.hexFlag("tweak")
			if err != nil {
				return err
			}
			out, err := a.signer.PrivateAdd(key, tweak)
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{"privateKey": "0x" + hex.EncodeToString(out)})
		},
	}
	private.Flags().String("key", "", "32-byte private key in hex")
	private.Flags().String("tweak", "", "tweak in hex")

	public := &cobra.Command{
		Use:   "public",
		Short: "Compute pubkey + tweak*G",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.hexFlag("pubkey")
			if err != nil {
				return err
			}
			tweak, err := a.hexFlag("tweak")
			if err != nil {
				return err
			}
			out, err := a.signer.PublicAdd(pub, tweak)
			if err != nil {
				return err
			}
			return output(cmd, map[string]string{"publicKey": "0x" + hex.EncodeToString(out)})
		},
	}
	public.Flags().String("pubkey", "", "compressed or uncompressed public key in hex")
	public.Flags().String("tweak", "", "tweak in hex")

	cmd.AddCommand(private, public)
	return cmd
}

func parseBig(name, s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 0)
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid --%s %q", name, s)
	}
	return v, nil
}

func (a *app) signTxCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign-tx",
		Short: "Sign a legacy transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.hexFlag("key")
			if err != nil {
				return err
			}
			gasPrice, err := parseBig("gas-price", a.v.GetString("gas-price"))
			if err != nil {
				return err
			}
			value, err := parseBig("value", a.v.GetString("value"))
			if err != nil {
				return err
			}
			var data []byte
			if d := a.v.GetString("data"); d != "" {
				if data, err = decodeHex("data", d); err != nil {
					return err
				}
			}

			tx := &ethsig.Transaction{
				Nonce:    a.v.GetUint64("nonce"),
				GasPrice: gasPrice,
				GasLimit: a.v.GetUint64("gas-limit"),
				To:       a.v.GetString("to"),
				Value:    value,
				Data:     data,
				ChainID:  a.v.GetUint64("chain-id"),
			}
			signed, err := a.signer.SignTransaction(tx, key)
			if err != nil {
				return err
			}
			return output(cmd, map[string]interface{}{
				"raw":       "0x" + hex.EncodeToString(signed.Raw),
				"signed":    "0x" + hex.EncodeToString(signed.Signed),
				"hash":      "0x" + hex.EncodeToString(signed.Hash),
				"signature": newSignatureOutput(signed.Signature),
			})
		},
	}
	cmd.Flags().String("key", "", "32-byte private key in hex")
	cmd.Flags().Uint64("nonce", 0, "sender nonce")
	cmd.Flags().String("gas-price", "0", "gas price in wei (decimal or 0x hex)")
	cmd.Flags().Uint64("gas-limit", 21000, "gas limit")
	cmd.Flags().String("to", "", "recipient address, empty for contract creation")
	cmd.Flags().String("value", "0", "value in wei (decimal or 0x hex)")
	cmd.Flags().String("data", "", "call data in hex")
	cmd.Flags().Uint64("chain-id", 0, "EIP-155 chain id, 0 for none")
	return cmd
}
