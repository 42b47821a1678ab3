// sms-gateway-sim is a local stand-in for the SMS webhook provider. Point
// SMS_WEBHOOK_URL at it and every reminder the service sends gets printed
// instead of delivered.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	var (
		addr  = flag.String("addr", getenv("ADDR", ":9090"), "listen address")
		token = flag.String("token", getenv("SMS_WEBHOOK_TOKEN", ""), "expected bearer token, empty disables the check")
	)
	flag.Parse()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if *token != "" && r.Header.Get("Authorization") != "Bearer "+*token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var msg struct {
			To   string `json:"to"`
			Body string `json:"body"`
		}
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		fmt.Printf("[%s] sms to=%s body=%q\n", time.Now().Format(time.RFC3339), msg.To, msg.Body)
		w.WriteHeader(http.StatusOK)
	})

	fmt.Printf("sms gateway simulator listening on %s\n", strings.TrimSpace(*addr))
	if err := http.ListenAndServe(*addr, nil); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
