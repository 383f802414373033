package ledger

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// contractABI describes the certificate registry contract surface the
// service uses. The registry keys entries by bare IPFS hash.
const contractABI = `[
	{
		"type": "function",
		"name": "issueCertificate",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "_recipientName", "type": "string"},
			{"name": "_courseName", "type": "string"},
			{"name": "_ipfsHash", "type": "string"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "validateCertificate",
		"stateMutability": "view",
		"inputs": [{"name": "_ipfsHash", "type": "string"}],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"type": "function",
		"name": "getCertificate",
		"stateMutability": "view",
		"inputs": [{"name": "_ipfsHash", "type": "string"}],
		"outputs": [
			{"name": "recipientName", "type": "string"},
			{"name": "courseName", "type": "string"},
			{"name": "ipfsHash", "type": "string"},
			{"name": "issuedOn", "type": "uint256"}
		]
	}
]`

func parseABI() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(contractABI))
}

// Entry is a certificate record as stored by the registry contract. A
// zero-value entry (empty ipfsHash) means the hash was never issued.
type Entry struct {
	RecipientName string
	CourseName    string
	IPFSHash      string
	IssuedOn      time.Time
}

// entryFromOutputs maps the getCertificate return values. issuedOn is a
// unix timestamp set by the contract at issuance.
func entryFromOutputs(out []any) (Entry, bool) {
	if len(out) != 4 {
		return Entry{}, false
	}
	recipient, ok1 := out[0].(string)
	course, ok2 := out[1].(string)
	hash, ok3 := out[2].(string)
	issued, ok4 := out[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return Entry{}, false
	}

	return Entry{
		RecipientName: recipient,
		CourseName:    course,
		IPFSHash:      hash,
		IssuedOn:      time.Unix(issued.Int64(), 0).UTC(),
	}, true
}
