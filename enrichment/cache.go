package enrichment

import (
	"log"
	"sync"
)

// CacheStats — счетчики обращений к кэшу.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Rebuild int64 `json:"rebuilds"`
}

// Cache — единственное разделяемое изменяемое состояние процесса:
// кэш обогащенной базы дефектов, ключованный отпечатком включенных
// справочников.
//
// Модель конкурентности — single-flight, и не по ключу, а глобально:
//   - читатели с тем же ключом ждут завершения идущей сборки;
//   - сборка с другим ключом тоже ждет, пока закончится текущая,
//     и только потом начинает свою.
//
// Это сознательное упрощение: немного задержки в обмен на гарантию,
// что тяжелое обогащение никогда не выполняется дважды параллельно.
// Известная точка сериализации, не баг.
type Cache struct {
	mu   sync.Mutex
	cond *sync.Cond

	building bool
	key      string
	data     []EnrichedRecord

	stats CacheStats
}

// NewCache создает пустой кэш обогащения.
func NewCache() *Cache {
	c := &Cache{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// GetOrBuild возвращает обогащенную базу для набора флагов opts.
// При отсутствии валидного кэша вызывает build (вне глобальной блокировки
// данных, но под эксклюзивным правом сборки).
//
// Ошибка build не кэшируется: следующий вызов попробует снова.
func (c *Cache) GetOrBuild(opts Options, build func() ([]EnrichedRecord, error)) ([]EnrichedRecord, error) {
	key := opts.Key()

	c.mu.Lock()
	for {
		// Валидный кэш с нужным ключом — отдаем сразу
		if !c.building && c.key == key && c.data != nil {
			c.stats.Hits++
			data := c.data
			c.mu.Unlock()
			return data, nil
		}

		// Любая идущая сборка (наш ключ или чужой) — ждем её конца
		if c.building {
			c.cond.Wait()
			continue
		}

		break
	}

	// Право сборки захвачено
	c.stats.Misses++
	c.stats.Rebuild++
	c.building = true
	c.key = key
	c.data = nil
	c.mu.Unlock()

	log.Printf("🔥 Сборка кэша обогащения, ключ=%s", key)
	data, err := build()

	c.mu.Lock()
	c.building = false
	if err == nil {
		c.data = data
	} else {
		// Сборка сорвалась — кэш остается пустым, ключ не считается валидным
		c.key = ""
	}
	c.cond.Broadcast()
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return data, nil
}

// Invalidate сбрасывает кэш (например, после перезагрузки справочников).
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.building {
		c.key = ""
		c.data = nil
	}
}

// Stats возвращает снимок счетчиков.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
