package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"readhub/internal/sync"
)

// Tails the TCP event stream of an api-server. Useful for watching a
// shelf change live without opening the web client.
func main() {
	var (
		addr   = flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
		raw    = flag.Bool("raw", false, "print raw JSON lines instead of a summary")
		userID = flag.String("user-id", "", "only show events for this user")
	)
	flag.Parse()

	for {
		if err := tail(*addr, *raw, *userID); err != nil {
			log.Printf("[sync-client] disconnected: %v", err)
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

func tail(addr string, raw bool, userID string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync-client] connected to %s", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()

		var ev sync.RecordEvent
		if err := json.Unmarshal(line, &ev); err != nil || ev.Type == "" {
			// welcome banner and anything else non-event prints as-is
			fmt.Println(string(line))
			continue
		}
		if userID != "" && ev.UserID != userID {
			continue
		}

		if raw {
			fmt.Println(string(line))
			continue
		}
		fmt.Println(summary(ev))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func summary(ev sync.RecordEvent) string {
	at := ev.At.Format("15:04:05")
	switch ev.Type {
	case sync.EventNewUnits:
		avail := "?"
		if ev.AvailableUnits != nil {
			avail = fmt.Sprintf("%d", *ev.AvailableUnits)
		}
		return fmt.Sprintf("%s  %-18s %q now has %s chapters", at, ev.Type, ev.Title, avail)
	case sync.EventRecordDelete:
		return fmt.Sprintf("%s  %-18s %q removed", at, ev.Type, ev.Title)
	default:
		return fmt.Sprintf("%s  %-18s %q status=%s progress=%d%%", at, ev.Type, ev.Title, ev.Status, ev.ProgressPercent)
	}
}
