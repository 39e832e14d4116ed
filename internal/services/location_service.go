package services

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"grassmap/internal/metrics"
	"grassmap/internal/models/domain_models"
	mem "grassmap/pkg/memcache"
)

const defaultIPAPIBaseURL = "https://ipapi.co"

var chineseAddressKeywords = []string{
	"中国", "China", "中华人民共和国",
	"北京", "Beijing", "上海", "Shanghai", "广州", "Guangzhou",
	"深圳", "Shenzhen", "杭州", "Hangzhou", "南京", "Nanjing",
	"武汉", "Wuhan", "成都", "Chengdu", "西安", "Xi'an",
	"重庆", "Chongqing", "天津", "Tianjin", "苏州", "Suzhou",
	"广东", "Guangdong", "江苏", "Jiangsu", "浙江", "Zhejiang",
	"山东", "Shandong", "河南", "Henan", "四川", "Sichuan",
	"湖北", "Hubei", "湖南", "Hunan", "福建", "Fujian",
	"香港", "Hong Kong", "澳门", "Macau", "台湾", "Taiwan",
	"市", "省", "区", "县", "路", "街", "号",
}

// IsChineseAddress reports whether address mentions a place in Greater China
// or uses a Chinese administrative suffix. Matching is case-insensitive.
func IsChineseAddress(address string) bool {
	lower := strings.ToLower(address)
	for _, kw := range chineseAddressKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// DefaultUserLocation is reported when detection fails.
func DefaultUserLocation() domain_models.UserLocation {
	return domain_models.UserLocation{
		Country:         "Unknown",
		CountryCode:     "US",
		IsChina:         false,
		DetectionMethod: domain_models.DetectionUnknown,
	}
}

type LocationServiceInterface interface {
	// DetectLocation resolves the caller's location from clientIP. It never
	// fails: lookup errors yield DefaultUserLocation.
	DetectLocation(ctx context.Context, clientIP string) domain_models.UserLocation
	// UpdateGPS records device coordinates on top of the IP-based location.
	UpdateGPS(ctx context.Context, clientIP string, coords domain_models.GPSCoords) domain_models.UserLocation
	ClearCache(clientIP string)
	NavigationURL(loc domain_models.UserLocation, address string, coords *domain_models.Coordinates) string
}

type LocationService struct {
	http    *http.Client
	baseURL string
	cache   mem.Store[domain_models.UserLocation]
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewLocationService(cache mem.Store[domain_models.UserLocation], m *metrics.Metrics, logger *zap.Logger) *LocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNop()
	}
	if cache == nil {
		cache = mem.NewTTLStore[domain_models.UserLocation](time.Hour, false)
	}
	return &LocationService{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultIPAPIBaseURL,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

func (s *LocationService) DetectLocation(ctx context.Context, clientIP string) domain_models.UserLocation {
	key := cacheKeyForIP(clientIP)
	if loc, ok := s.cache.Get(key); ok {
		return loc
	}

	loc, err := s.lookupIP(ctx, clientIP)
	if err != nil {
		s.metrics.UpstreamRequests.WithLabelValues("ipapi", "error").Inc()
		s.logger.Warn("IP location lookup failed, using default", zap.String("ip", clientIP), zap.Error(err))
		return DefaultUserLocation()
	}
	s.metrics.UpstreamRequests.WithLabelValues("ipapi", "ok").Inc()
	s.cache.Set(key, loc)
	return loc
}

func (s *LocationService) UpdateGPS(ctx context.Context, clientIP string, coords domain_models.GPSCoords) domain_models.UserLocation {
	loc := s.DetectLocation(ctx, clientIP)
	loc.Coords = &coords
	loc.DetectionMethod = domain_models.DetectionGPS
	s.cache.Set(cacheKeyForIP(clientIP), loc)
	return loc
}

func (s *LocationService) ClearCache(clientIP string) {
	s.cache.Delete(cacheKeyForIP(clientIP))
}

func (s *LocationService) lookupIP(ctx context.Context, clientIP string) (domain_models.UserLocation, error) {
	endpoint := s.baseURL + "/json/"
	if isPublicIP(clientIP) {
		endpoint = s.baseURL + "/" + url.PathEscape(clientIP) + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain_models.UserLocation{}, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return domain_models.UserLocation{}, fmt.Errorf("ipapi http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return domain_models.UserLocation{}, fmt.Errorf("ipapi bad status: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain_models.UserLocation{}, fmt.Errorf("ipapi read: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return domain_models.UserLocation{}, fmt.Errorf("ipapi returned invalid json")
	}
	if gjson.GetBytes(body, "error").Bool() {
		return domain_models.UserLocation{}, fmt.Errorf("ipapi: %s", gjson.GetBytes(body, "reason").String())
	}

	countryCode := gjson.GetBytes(body, "country_code").String()
	if countryCode == "" {
		countryCode = "US"
	}
	country := gjson.GetBytes(body, "country_name").String()
	if country == "" {
		country = "Unknown"
	}
	return domain_models.UserLocation{
		Country:         country,
		CountryCode:     countryCode,
		City:            gjson.GetBytes(body, "city").String(),
		IsChina:         countryCode == "CN",
		DetectionMethod: domain_models.DetectionIP,
	}, nil
}

// NavigationURL picks AMap for users in China or Chinese addresses and
// Google Maps otherwise. Coordinates win over the address when present.
func (s *LocationService) NavigationURL(loc domain_models.UserLocation, address string, coords *domain_models.Coordinates) string {
	return NavigationURL(loc, address, coords)
}

func NavigationURL(loc domain_models.UserLocation, address string, coords *domain_models.Coordinates) string {
	if loc.IsChina || IsChineseAddress(address) {
		to := url.QueryEscape(address)
		if coords != nil {
			// AMap takes lng,lat
			to = formatCoord(coords.Lng) + "," + formatCoord(coords.Lat)
		}
		return "https://uri.amap.com/navigation?to=" + to + "&coordinate=gaode&callnative=1"
	}

	q := url.QueryEscape(address)
	if coords != nil {
		q = formatCoord(coords.Lat) + "," + formatCoord(coords.Lng)
	}
	return "https://maps.google.com/?q=" + q
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func cacheKeyForIP(ip string) string {
	if ip == "" {
		return "unknown"
	}
	return ip
}

func isPublicIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return !(parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() || parsed.IsLinkLocalUnicast())
}
