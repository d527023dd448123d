package authentication

// Why not crypto/ecdh or a generic ECDH interface from the wider ecosystem?
//
// The vehicle requires a static ECDH key reused across every session. The
// crypto/ecdh package (and similar generic key-exchange interfaces) are
// built around ephemeral keys and would force the long-term private scalar
// through an API that isn't safe to back with an HSM: a hardware-backed
// implementation of this interface would have to divulge the long-term
// secret to the host in order to satisfy it.

// SharedKeySizeBytes is the length of the cryptographic key shared by a Signer and a Verifier.
const SharedKeySizeBytes = 16

// ECDHPrivateKey represents a local private key capable of deriving a Session with a remote peer.
type ECDHPrivateKey interface {
	Exchange(remotePublicBytes []byte) (Session, error)
	PublicBytes() []byte
}
