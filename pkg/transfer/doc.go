// Package transfer implements the credential core of OurTransfer: minting
// HMAC-signed, time-bounded access grants for single storage objects,
// deriving object names, and composing the shareable links that carry a
// grant.
//
// A grant has no server-side record. It is serialized entirely into the
// query string of a storage URL (see Signer), so issuing is stateless and a
// link simply stops working when its window closes. The trade-off is that a
// link cannot be revoked before its natural expiry.
package transfer
