package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sigmaq/catalog"
	"sigmaq/database"
	"sigmaq/internal/config"
	"sigmaq/server"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════")
	log.Println("🚀 Запуск SIGMA-Q Quality Server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	catalogs := catalog.NewLoader(cfg.CatalogDir, cfg.DataDir)

	// Прогреваем справочники на старте: падение здесь лучше, чем на
	// первом запросе
	if _, err := catalogs.Load(); err != nil {
		log.Printf("⚠️ Справочники недоступны на старте: %v", err)
	}

	snapshots, err := database.NewSnapshotStore(cfg.SnapshotDBPath)
	if err != nil {
		log.Fatalf("Ошибка открытия базы снимков: %v", err)
	}
	defer snapshots.Close()

	source := server.NewFileDataSource(cfg.DataDir)
	srv := server.New(cfg, catalogs, source, snapshots)

	// Graceful shutdown по SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		log.Printf("Получен сигнал %v, останавливаем сервер...", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Ошибка остановки сервера: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("✗ КРИТИЧЕСКАЯ ОШИБКА: Не удалось запустить HTTP сервер: %v", err)
	}

	log.Println("Сервер остановлен")
}
