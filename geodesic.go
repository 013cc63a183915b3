package profile

import (
	"fmt"
	"math"
)

// WGS84 ellipsoid.
const (
	wgs84A = 6378137.0
	wgs84F = 1 / 298.257223563
)

const (
	geodesicEpsilon       = 1e-12
	geodesicMaxIterations = 200
)

// Distance returns the geodesic distance between a and b in meters, computed
// with Vincenty's inverse formula on the WGS84 ellipsoid. The iteration does
// not converge for some nearly antipodal pairs, which is reported as an
// error.
func Distance(a, b Coord) (float64, error) {
	if a == b {
		return 0, nil
	}

	f := wgs84F
	minorAxis := wgs84A * (1 - f)
	u1 := math.Atan((1 - f) * math.Tan(radians(a.Lat)))
	u2 := math.Atan((1 - f) * math.Tan(radians(b.Lat)))
	deltaLon := b.Lon - a.Lon
	for deltaLon > 180 {
		deltaLon -= 360
	}
	for deltaLon < -180 {
		deltaLon += 360
	}
	l := radians(deltaLon)
	sinU1, cosU1 := math.Sincos(u1)
	sinU2, cosU2 := math.Sincos(u2)

	lambda := l
	var sinSigma, cosSigma, sigma, cosSqAlpha, cos2SigmaM float64
	for i := 0; ; i++ {
		if i == geodesicMaxIterations {
			return 0, fmt.Errorf("geodesic between %v and %v did not converge", a, b)
		}
		sinLambda, cosLambda := math.Sincos(lambda)
		sinSigma = math.Hypot(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)
		if sinSigma == 0 {
			// Coincident points.
			return 0, nil
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha := cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha == 0 {
			// Equatorial line.
			cos2SigmaM = 0
		} else {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		}
		c := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
		previousLambda := lambda
		lambda = l + (1-c)*f*sinAlpha*(sigma+c*sinSigma*(cos2SigmaM+c*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-previousLambda) < geodesicEpsilon {
			break
		}
	}

	uSq := cosSqAlpha * (wgs84A*wgs84A - minorAxis*minorAxis) / (minorAxis * minorAxis)
	bigA := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	bigB := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := bigB * sinSigma * (cos2SigmaM + bigB/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		bigB/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
	return minorAxis * bigA * (sigma - deltaSigma), nil
}

func radians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
