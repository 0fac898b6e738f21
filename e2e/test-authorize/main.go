package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

// Smoke check for a locally running authorizer: sends a gateway token event
// and prints the policy that comes back.
func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <jwt> [server-addr]", os.Args[0])
	}

	token := os.Args[1]
	serverAddr := "http://localhost:8080"
	if len(os.Args) > 2 {
		serverAddr = "http://localhost" + os.Args[2]
	}

	event := map[string]string{
		"type":               "TOKEN",
		"authorizationToken": "Bearer " + token,
		"methodArn":          "arn:aws:execute-api:local:000000000000:local/live/GET/lookup/vin/1HGCM82633A004352",
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to encode event: %v", err)
	}

	resp, err := http.Post(serverAddr+"/authorize", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}

	var policy struct {
		PrincipalID    string `json:"principalId"`
		PolicyDocument struct {
			Statement []struct {
				Effect   string `json:"Effect"`
				Resource string `json:"Resource"`
			} `json:"Statement"`
		} `json:"policyDocument"`
		Context map[string]string `json:"context"`
	}
	if err := json.Unmarshal(raw, &policy); err != nil {
		log.Fatalf("Unexpected response (%d): %s", resp.StatusCode, raw)
	}

	effect := ""
	resource := ""
	if len(policy.PolicyDocument.Statement) > 0 {
		effect = policy.PolicyDocument.Statement[0].Effect
		resource = policy.PolicyDocument.Statement[0].Resource
	}

	if effect == "Allow" {
		fmt.Println("✅ Authorization ALLOWED")
	} else {
		fmt.Println("❌ Authorization DENIED")
	}
	fmt.Printf("   Principal: %s\n", policy.PrincipalID)
	fmt.Printf("   Resource:  %s\n", resource)

	if len(policy.Context) > 0 {
		fmt.Println("\n📋 Context passed to the backend:")
		for k, v := range policy.Context {
			fmt.Printf("   %s: %s\n", k, v)
		}
	}
}
