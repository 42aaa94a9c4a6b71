package main

import (
	"context"
	"log"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"module-tariff/internal/host"
	"module-tariff/middleware/tariff"
	"module-tariff/middleware/tariff/infra"
)

// Exemplo: um host com os módulos em memória e a tabela montada no código,
// sem tariffs.json nem node_modules no disco.
var files = map[string]string{
	"/app/node_modules/left-pad/package.json": `{"name": "left-pad", "main": "index.js"}`,
	"/app/node_modules/left-pad/index.js": `
module.exports = function leftPad(str, len, ch) {
  str = String(str);
  ch = ch === undefined ? " " : String(ch);
  while (str.length < len) str = ch + str;
  return str;
};`,
	"/app/data.json": `{"greeting": "hello", "width": 12}`,
	"/app/main.js": `
const leftPad = require("left-pad");
const data = require("./data.json");
console.log("[" + leftPad(data.greeting, data.width, ".") + "]");
module.exports = { done: true };`,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fs := afero.NewMemMapFs()
	for name, src := range files {
		if err := afero.WriteFile(fs, name, []byte(src), 0o644); err != nil {
			log.Fatalf("write %s: %v", name, err)
		}
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	h, err := host.New(fs, "/app", host.WithLogger(logger))
	if err != nil {
		log.Fatalf("host error: %v", err)
	}

	stats := infra.NewMemoryStatsStore()
	ic := tariff.New(tariff.Options{
		Table: infra.NewStaticRateTable(map[string]float64{
			"left-pad":    50,
			"./main.js":   25,
			"./data.json": 100,
		}),
		Stats:  stats,
		Logger: logger,
	})
	h.InstallTariff(ic)

	if _, err := h.Import(ctx, "./main.js"); err != nil {
		log.Printf("import error: %v", err)
		os.Exit(1)
	}

	bySpec := stats.BySpecifier()
	for _, spec := range slices.Sorted(maps.Keys(bySpec)) {
		c := bySpec[spec]
		log.Printf("%s: %d tariff(s), original %s, imposed %s", spec, c.Applied, c.Original, c.Wait)
	}
}
