package orders

import "github.com/aibeh/order-management/pkg/models"

type multiSink []EventSink

// MultiSink fans lifecycle notifications out to several sinks, skipping nil
// entries. Returns nil when nothing remains, which the Service treats as "no
// sink configured".
func MultiSink(sinks ...EventSink) EventSink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (m multiSink) OrderCreated(o *models.Order) {
	for _, s := range m {
		s.OrderCreated(o)
	}
}

func (m multiSink) OrderUpdated(o *models.Order) {
	for _, s := range m {
		s.OrderUpdated(o)
	}
}

func (m multiSink) OrderDeleted(id string) {
	for _, s := range m {
		s.OrderDeleted(id)
	}
}
