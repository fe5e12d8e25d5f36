package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"secure-doc-gateway/internal/ports"

	"go.uber.org/zap"
)

// ScanScheduler : внутрипроцессный запуск очереди по таймеру. Захват задач идёт через SKIP LOCKED,
// поэтому планировщики на нескольких инстансах не мешают друг другу
type ScanScheduler struct {
	scans    ports.ScanService
	interval time.Duration
	logger   *zap.Logger
	wg       sync.WaitGroup
	stopCh   chan struct{}
	mu       sync.Mutex
	running  bool
}

func NewScanScheduler(scans ports.ScanService, interval time.Duration, logger *zap.Logger) *ScanScheduler {
	return &ScanScheduler{
		scans:    scans,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

func (s *ScanScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("планировщик уже запущен")
	}
	if s.interval <= 0 {
		return errors.New("интервал планировщика должен быть положительным")
	}

	s.running = true
	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("[ScanScheduler] запущен", zap.Duration("interval", s.interval))
	return nil
}

func (s *ScanScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	close(s.stopCh)
	s.wg.Wait()
	s.running = false
	s.logger.Info("[ScanScheduler] остановлен")
}

func (s *ScanScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ScanScheduler) tick(ctx context.Context) {
	if _, err := s.scans.HealthPass(ctx); err != nil {
		s.logger.Error("[ScanScheduler] ошибка health-прохода", zap.Error(err))
	}
	if _, err := s.scans.RunBatch(ctx); err != nil {
		s.logger.Error("[ScanScheduler] ошибка обработки пачки", zap.Error(err))
	}
}
