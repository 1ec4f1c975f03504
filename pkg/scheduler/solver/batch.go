package solver

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/paiban/weekshift/pkg/model"
)

// AssignBatch 并行为多个互不相关的输入（不同部门或不同周）生成排班
// 每个输入拥有独立的台账和排班表；任一输入失败则返回该错误
func (s *GreedySolver) AssignBatch(ctx context.Context, inputs map[string][]model.Employee) (map[string]*Result, error) {
	results := make(map[string]*Result, len(inputs))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))

	for key, employees := range inputs {
		eg.Go(func() error {
			result, err := s.Solve(egCtx, employees)
			if err != nil {
				return fmt.Errorf("排班 %s 失败: %w", key, err)
			}
			mu.Lock()
			results[key] = result
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
