/*
Package registry implements Property Registry contract which tracks the
verification status of real-world property records.

Any account can register a property it claims to own. Contract owner
manages a set of verifiers, and each verifier can approve or reject an
unverified property once. Property records and the verifier set are public.

# Errors

Failed calls FAULT with an exception message prefixed by a numeric code:

	101: caller lacks the required role
	102: property already exists or already has a verdict
	104: property is not registered

Code 103 is reserved.

# Contract notifications

VerifierAdded notification. This notification is produced when contract owner
grants the verifier role to a new account.

	VerifierAdded:
	  - name: verifier
	    type: Hash160

VerifierRemoved notification. This notification is produced when contract
owner revokes the verifier role.

	VerifierRemoved:
	  - name: verifier
	    type: Hash160

PropertyRegistered notification. This notification is produced when a new
property is registered.

	PropertyRegistered:
	  - name: id
	    type: String
	  - name: owner
	    type: Hash160

PropertyVerified notification. This notification is produced when a verifier
approves the property.

	PropertyVerified:
	  - name: id
	    type: String
	  - name: verifier
	    type: Hash160

PropertyRejected notification. This notification is produced when a verifier
declines the property.

	PropertyRejected:
	  - name: id
	    type: String
	  - name: verifier
	    type: Hash160
	  - name: reason
	    type: String
*/
package registry

/*
Contract storage model.

Current conventions:
 <account>: 20-byte script hash of Neo account
 <id>: property identifier, 1 to 63 bytes

# Summary
Key-value storage format:
 - 'o' -> <account>
   contract owner, set once on deployment
 - 'v<account>' -> []byte{1}
   verifier set membership
 - 'p<id>' -> std.Serialize(Property)
   property records

# Properties
Records are never deleted. Status is changed at most once, from Unverified to
either Verified or Rejected.
*/
