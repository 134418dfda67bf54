package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type sample struct {
	ID   uint
	Name string
}

func TestObserve(t *testing.T) {
	m := NewMetrics("clinic", "db", prometheus.NewRegistry())

	m.Observe("query", time.Now(), nil)
	m.Observe("query", time.Now(), errors.New("boom"))
	m.Observe("query", time.Now(), nil)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("query", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("query", "error")))
}

func TestRegisterCountsGormOperations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("clinic", "db", reg)

	db, err := gorm.Open(sqlite.Open("file:metrics?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&sample{}))
	require.NoError(t, m.Register(db))

	require.NoError(t, db.Create(&sample{Name: "a"}).Error)
	var rows []sample
	require.NoError(t, db.Find(&rows).Error)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("create", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatabaseOperations.WithLabelValues("query", "success")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.DatabaseLatency))
}

func TestNewMetricsOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("clinic", "db", prometheus.NewRegistry())
		NewMetrics("clinic", "db", prometheus.NewRegistry())
	})
}
