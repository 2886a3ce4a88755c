package sharelink

// Wire types of the share API.

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFA      string `json:"mfa,omitempty"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type NodeInfo struct {
	Handle string `json:"handle"`
	Parent string `json:"parent,omitempty"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	// Nonce is the base64 chacha20 nonce of a file's content.
	Nonce string `json:"nonce,omitempty"`
}

type ListingResponse struct {
	Roots []NodeInfo `json:"roots"`
	Nodes []NodeInfo `json:"nodes"`
}

const (
	// LoginPath accepts a LoginRequest and answers a LoginResponse.
	LoginPath = "/api/v1/login"

	// NonceSize is the length of a content nonce.
	NonceSize = 12
)
