// Package certsdk is a typed Go client for the certvault HTTP API.
//
// Unauthenticated operations (registration, login, validation, health)
// live on SDKClient. Login returns a Session, which attaches the bearer
// token to every request it makes:
//
//	client := certsdk.NewSDKClient("https://certs.example.com")
//	session, err := client.Login(ctx, "issuer@example.com", "secret")
//	if err != nil { ... }
//	cert, err := session.IssueCertificate(ctx, certsdk.IssueCertificateRequest{
//		FirstName:      "Ada",
//		LastName:       "Lovelace",
//		Organization:   "Cypher Academy",
//		CourseName:     "Analytical Engines 101",
//		RecipientEmail: "ada@example.com",
//		AssignedDate:   "2024-01-01",
//		DurationYears:  1,
//	})
//
// Certificate validation needs no account at all:
//
//	report, err := client.Validate(ctx, "QmSomeHash")
package certsdk
