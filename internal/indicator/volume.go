package indicator

import "stock-signals/internal/model"

// calcVolume compares the current volume against its rolling average.
func (c *Calculator) calcVolume(volumes []float64) model.VolumeResult {
	avg := smaSeries(volumes, c.cfg.VolumePeriod)

	res := model.VolumeResult{
		Current: last(volumes),
		Average: last(avg),
	}
	if res.Current != nil && res.Average != nil && *res.Average > 0 {
		ratio := *res.Current / *res.Average
		res.Ratio = &ratio
		res.AboveAverage = *res.Current > *res.Average
	}
	return res
}
