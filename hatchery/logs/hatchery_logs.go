package logs

import "github.com/ethereum/go-ethereum/crypto"

// HatcheryTokenMinted is the event signature for mint logs.
// Parameters: tokenId, ownerAddress (indexed), species
var HatcheryTokenMinted = crypto.Keccak256Hash([]byte("HatcheryTokenMinted(string,address,uint256)"))

// HatcheryTokenEvolved is the event signature for evolution logs.
// Parameters: oldTokenId, newTokenId, ownerAddress (indexed), level
var HatcheryTokenEvolved = crypto.Keccak256Hash([]byte("HatcheryTokenEvolved(string,string,address,uint256)"))

// HatcheryDepositRefunded is the event signature for refund dispatch logs.
// Parameters: payerAddress (indexed), amount (wei)
var HatcheryDepositRefunded = crypto.Keccak256Hash([]byte("HatcheryDepositRefunded(address,uint256)"))
