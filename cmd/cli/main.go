package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"readhub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

type recordListResponse struct {
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
	Items  []models.ReadableRecord `json:"items"`
}

func main() {
	global := flag.NewFlagSet("readhub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "records":
		handleRecords(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "progress":
		handleProgress(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "notes":
		handleNotes(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "sync":
		handleSync(sub, args[2:])
	case "feed":
		handleFeed(*baseURL, *tokenPath, sub, args[2:])
	case "notify":
		handleNotify(sub, args[2:])
	case "export":
		handleExport(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		payload := map[string]string{"username": *username, "email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and logged in")
	case "logout":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: readhub auth <login|register|logout>")
	}
}

func handleRecords(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "add":
		fs := flag.NewFlagSet("records add", flag.ExitOnError)
		kind := fs.String("kind", "book", "book or serial")
		title := fs.String("title", "", "title")
		author := fs.String("author", "", "author")
		status := fs.String("status", "queued", "initial status")
		priority := fs.Int("priority", 3, "priority 1-5")
		tags := fs.String("tags", "", "comma-separated tags")
		sourceURL := fs.String("source-url", "", "archive work URL (serials)")
		pages := fs.Int("pages", 0, "page count (books)")
		available := fs.Int("available", 0, "available units (serials)")
		total := fs.Int("total", 0, "total units (serials)")
		_ = fs.Parse(args)
		if *title == "" {
			log.Fatal("title is required")
		}

		payload := map[string]any{
			"kind":     *kind,
			"title":    *title,
			"status":   *status,
			"priority": *priority,
		}
		if *author != "" {
			payload["author"] = *author
		}
		if *tags != "" {
			payload["tags"] = strings.Split(*tags, ",")
		}
		if *sourceURL != "" {
			payload["source_url"] = *sourceURL
		}
		if *pages > 0 {
			payload["page_count"] = *pages
		}
		if *available > 0 {
			payload["available_units"] = *available
		}
		if *total > 0 {
			payload["total_units"] = *total
		}

		var resp models.ReadableRecord
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/users/records", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "list":
		fs := flag.NewFlagSet("records list", flag.ExitOnError)
		status := fs.String("status", "", "status filter")
		kind := fs.String("kind", "", "kind filter")
		tag := fs.String("tag", "", "tag filter")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/users/records")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		if *status != "" {
			qv.Set("status", *status)
		}
		if *kind != "" {
			qv.Set("kind", *kind)
		}
		if *tag != "" {
			qv.Set("tag", *tag)
		}
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp recordListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "show":
		id := requireID(args, "records show")
		var resp models.ReadableRecord
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/records/"+url.PathEscape(id), token, nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "status":
		fs := flag.NewFlagSet("records status", flag.ExitOnError)
		id := fs.String("id", "", "record id")
		status := fs.String("set", "", "new status")
		_ = fs.Parse(args)
		if *id == "" || *status == "" {
			log.Fatal("id and set are required")
		}

		payload := map[string]string{"status": *status}
		var resp models.ReadableRecord
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/users/records/"+url.PathEscape(*id)+"/status", token, payload, &resp); err != nil {
			log.Fatalf("status failed: %v", err)
		}
		printJSON(resp)
	case "dates":
		fs := flag.NewFlagSet("records dates", flag.ExitOnError)
		id := fs.String("id", "", "record id")
		started := fs.String("started", "", "started at (RFC3339)")
		finished := fs.String("finished", "", "finished at (RFC3339)")
		abandoned := fs.String("abandoned", "", "abandoned at (RFC3339)")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("id is required")
		}

		payload := map[string]any{}
		for key, raw := range map[string]string{
			"started_at":   *started,
			"finished_at":  *finished,
			"abandoned_at": *abandoned,
		} {
			if raw == "" {
				continue
			}
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				log.Fatalf("invalid %s: %v", key, err)
			}
			payload[key] = ts
		}
		if len(payload) == 0 {
			log.Fatal("at least one of started/finished/abandoned required")
		}

		var resp models.ReadableRecord
		if err := doJSON(ctx, client, http.MethodPut, baseURL+"/users/records/"+url.PathEscape(*id)+"/dates", token, payload, &resp); err != nil {
			log.Fatalf("dates failed: %v", err)
		}
		printJSON(resp)
	case "snapshot":
		id := requireID(args, "records snapshot")
		var resp models.ProgressSnapshot
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/records/"+url.PathEscape(id)+"/snapshot", token, nil, &resp); err != nil {
			log.Fatalf("snapshot failed: %v", err)
		}
		printJSON(resp)
	case "remove":
		id := requireID(args, "records remove")
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/users/records/"+url.PathEscape(id), token, nil, &resp); err != nil {
			log.Fatalf("remove failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: readhub records <add|list|show|status|dates|snapshot|remove>")
	}
}

func handleProgress(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "update":
		fs := flag.NewFlagSet("progress update", flag.ExitOnError)
		id := fs.String("id", "", "record id")
		axis := fs.String("axis", "unit", "percent, unit or time")
		percent := fs.Int("percent", 0, "percent value")
		value := fs.Int("value", 0, "unit value (page or chapter)")
		current := fs.Int("current", 0, "elapsed seconds (time axis)")
		total := fs.Int("total", 0, "total seconds (time axis)")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("id is required")
		}

		payload := map[string]any{"axis": *axis}
		switch *axis {
		case "percent":
			payload["percent"] = *percent
		case "unit":
			payload["value"] = *value
		case "time":
			payload["current"] = *current
			payload["total"] = *total
		default:
			log.Fatal("axis must be percent, unit or time")
		}

		var resp models.ReadableRecord
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/users/records/"+url.PathEscape(*id)+"/progress", token, payload, &resp); err != nil {
			log.Fatalf("update failed: %v", err)
		}
		printJSON(resp)
	case "history":
		fs := flag.NewFlagSet("progress history", flag.ExitOnError)
		id := fs.String("id", "", "record id")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("id is required")
		}

		u, err := url.Parse(baseURL + "/users/history")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		qv.Set("record_id", *id)
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u.String(), token, nil, &resp); err != nil {
			log.Fatalf("history failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: readhub progress <update|history>")
	}
}

func handleNotes(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "add":
		fs := flag.NewFlagSet("notes add", flag.ExitOnError)
		id := fs.String("id", "", "record id")
		rating := fs.Int("rating", 0, "rating 1-5 (0 = none)")
		text := fs.String("text", "", "note text")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("id is required")
		}

		payload := map[string]any{"text": *text}
		if *rating > 0 {
			payload["rating"] = *rating
		}

		var resp models.Note
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/users/records/"+url.PathEscape(*id)+"/notes", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "list":
		fs := flag.NewFlagSet("notes list", flag.ExitOnError)
		id := fs.String("id", "", "record id")
		limit := fs.Int("limit", 20, "page size")
		offset := fs.Int("offset", 0, "offset")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("id is required")
		}

		u, err := url.Parse(baseURL + "/users/records/" + url.PathEscape(*id) + "/notes")
		if err != nil {
			log.Fatalf("invalid base url: %v", err)
		}
		qv := u.Query()
		qv.Set("limit", fmt.Sprintf("%d", *limit))
		qv.Set("offset", fmt.Sprintf("%d", *offset))
		u.RawQuery = qv.Encode()

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u.String(), token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: readhub notes <add|list>")
	}
}

func handleSync(sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("sync listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP sync server address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := runSyncTCP(*addr, *pretty); err != nil {
				log.Printf("[sync] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	default:
		log.Fatal("usage: readhub sync listen")
	}
}

func handleFeed(baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "watch":
		token := mustToken(tokenPath)
		fs := flag.NewFlagSet("feed watch", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /users/feed/ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/users/feed/ws")
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		header := http.Header{}
		header.Set("Authorization", "Bearer "+token)
		if err := runWebSocket(endpoint, header); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	default:
		log.Fatal("usage: readhub feed watch")
	}
}

func handleNotify(sub string, args []string) {
	switch sub {
	case "listen":
		fs := flag.NewFlagSet("notify listen", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:9090", "UDP notify server address")
		userID := fs.String("user-id", "", "user id to register as")
		_ = fs.Parse(args)
		if *userID == "" {
			log.Fatal("user-id is required")
		}
		if err := runNotifyUDP(*addr, *userID); err != nil {
			log.Fatalf("notify listen failed: %v", err)
		}
	default:
		log.Fatal("usage: readhub notify listen")
	}
}

func handleExport(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "json":
		fs := flag.NewFlagSet("export json", flag.ExitOnError)
		out := fs.String("out", "data/records.json", "output JSON path")
		limit := fs.Int("limit", 500, "max records to export")
		_ = fs.Parse(args)

		items, err := fetchRecords(ctx, client, baseURL, token, *limit)
		if err != nil {
			log.Fatalf("export json failed: %v", err)
		}
		if err := writeJSON(*out, items); err != nil {
			log.Fatalf("write json failed: %v", err)
		}
		log.Printf("exported %d records to %s", len(items), *out)
	case "csv":
		fs := flag.NewFlagSet("export csv", flag.ExitOnError)
		out := fs.String("out", "data/records.csv", "output CSV path")
		limit := fs.Int("limit", 500, "max records to export")
		_ = fs.Parse(args)

		items, err := fetchRecords(ctx, client, baseURL, token, *limit)
		if err != nil {
			log.Fatalf("export csv failed: %v", err)
		}
		if err := writeCSV(*out, items); err != nil {
			log.Fatalf("write csv failed: %v", err)
		}
		log.Printf("exported %d records to %s", len(items), *out)
	default:
		log.Fatal("usage: readhub export <json|csv>")
	}
}

func runSyncTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[sync] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runWebSocket(wsURL string, header http.Header) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[feed] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func runNotifyUDP(addr, userID string) error {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	register, err := json.Marshal(map[string]string{"type": "register", "user_id": userID})
	if err != nil {
		return err
	}
	if _, err := conn.Write(register); err != nil {
		return err
	}
	log.Printf("[notify] registered as %s at %s, waiting for notifications", userID, addr)

	buf := make([]byte, 2048)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			return err
		}
		fmt.Println(string(buf[:n]))
	}
}

func fetchRecords(ctx context.Context, client *http.Client, baseURL, token string, limit int) ([]models.ReadableRecord, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be > 0")
	}

	var out []models.ReadableRecord
	offset := 0
	for len(out) < limit {
		pageSize := 50
		if remaining := limit - len(out); remaining < pageSize {
			pageSize = remaining
		}
		u, err := url.Parse(baseURL + "/users/records")
		if err != nil {
			return nil, err
		}
		qv := u.Query()
		qv.Set("limit", fmt.Sprintf("%d", pageSize))
		qv.Set("offset", fmt.Sprintf("%d", offset))
		u.RawQuery = qv.Encode()

		var resp recordListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), token, nil, &resp); err != nil {
			return nil, err
		}
		if len(resp.Items) == 0 {
			break
		}
		out = append(out, resp.Items...)
		offset += len(resp.Items)
		if offset >= resp.Total {
			break
		}
	}

	return out, nil
}

func writeJSON(path string, items []models.ReadableRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, items []models.ReadableRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"id", "kind", "title", "author", "status", "priority", "progress_percent",
		"available_units", "total_units", "page_count", "tags", "source_url",
	}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{
			item.ID,
			string(item.Kind),
			item.Title,
			item.Author,
			string(item.Status),
			fmt.Sprintf("%d", item.Priority),
			fmt.Sprintf("%d", item.ProgressPercent),
			intField(item.AvailableUnits),
			intField(item.TotalUnits),
			intField(item.PageCount),
			strings.Join(item.Tags, ","),
			strField(item.SourceURL),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func intField(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func strField(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func requireID(args []string, usage string) string {
	fs := flag.NewFlagSet(usage, flag.ExitOnError)
	id := fs.String("id", "", "record id")
	_ = fs.Parse(args)
	if *id == "" {
		log.Fatalf("usage: readhub %s -id <record id>", usage)
	}
	return *id
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.readhub-token.json"
	}
	return filepath.Join(home, ".readhub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("readhub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout")
	fmt.Println("  records add|list|show|status|dates|snapshot|remove")
	fmt.Println("  progress update|history")
	fmt.Println("  notes add|list")
	fmt.Println("  sync listen")
	fmt.Println("  feed watch")
	fmt.Println("  notify listen")
	fmt.Println("  export json|csv")
}
