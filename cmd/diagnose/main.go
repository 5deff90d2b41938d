package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"flibproxy/internal/catalog"
	"flibproxy/internal/config"
	"flibproxy/internal/search"
)

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	target := flag.String("target", "all", "catalog|proxy|all")
	query := flag.String("query", "Кинг", "search query")
	timeout := flag.Duration("timeout", 30*time.Second, "timeout (e.g. 3s, 10s)")
	flag.Parse()

	path, required := config.Path()
	cfg, err := config.Load(path, required)
	if err != nil {
		fail("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("🔍 === STARTING COMPONENT DIAGNOSTICS ===")
	ok := true
	switch *target {
	case "catalog":
		ok = checkCatalog(ctx, cfg, *query)
	case "proxy":
		ok = checkProxy(ctx, cfg, *query)
	case "all":
		ok = checkCatalog(ctx, cfg, *query)
		ok = checkProxy(ctx, cfg, *query) && ok
	default:
		fail("unknown target %q", *target)
	}
	fmt.Println("\n🏁 === DIAGNOSTICS COMPLETE ===")
	if !ok {
		os.Exit(1)
	}
}

// checkCatalog ходит на сайт напрямую, без прокси
func checkCatalog(ctx context.Context, cfg config.Config, query string) bool {
	fmt.Printf("\n[1] Testing catalog site (%s)...\n", cfg.Catalog.BaseURL)
	c := catalog.New(cfg.Catalog.Options(), nil)

	start := time.Now()
	books, err := c.Search(ctx, query)
	if err != nil {
		fmt.Printf("❌ Search failed: %v\n", err)
		return false
	}
	fmt.Printf("✅ PASS. Books Found: %d (%v)\n", len(books), time.Since(start).Round(time.Millisecond))
	if len(books) == 0 {
		fmt.Println("   (Note: 0 books usually means the page layout changed)")
		return true
	}

	formats, err := c.Formats(ctx, books[0].ID)
	if err != nil {
		fmt.Printf("❌ Formats for %s failed: %v\n", books[0].ID, err)
		return false
	}
	fmt.Printf("✅ PASS. %q has %d formats\n", books[0].Title, len(formats))
	return true
}

// checkProxy проверяет запущенный flibproxy по адресу cli.gateway_url
func checkProxy(ctx context.Context, cfg config.Config, query string) bool {
	fmt.Printf("\n[2] Testing proxy (%s)...\n", cfg.CLI.GatewayURL)
	svc, err := search.New(cfg.CLI)
	if err != nil {
		fmt.Printf("❌ Client: %v\n", err)
		return false
	}
	res, err := svc.Search(ctx, query, 1)
	if err != nil {
		fmt.Printf("❌ Proxy search failed: %v\n", err)
		return false
	}
	fmt.Printf("✅ PASS. Total: %d\n", res.Total)
	return true
}
