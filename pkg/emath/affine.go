package emath

// Some basic affine transformations, used to move pixel coords into the
// frame of an elliptical light profile.

import(
	"fmt"
	"math"
	"golang.org/x/image/math/f64"  // Will be "image/math/f64" at some point, hopefully make this file redundant
)

// Use a local type so we can hang methods off it
type Aff3 f64.Aff3

// Cut-n-pasted from image@0.7.0/draw/scale:matMul
func (p Aff3)Mult(q Aff3) Aff3 {
	return Aff3{
		p[3*0+0]*q[3*0+0] + p[3*0+1]*q[3*1+0],
		p[3*0+0]*q[3*0+1] + p[3*0+1]*q[3*1+1],
		p[3*0+0]*q[3*0+2] + p[3*0+1]*q[3*1+2] + p[3*0+2],
		p[3*1+0]*q[3*0+0] + p[3*1+1]*q[3*1+0],
		p[3*1+0]*q[3*0+1] + p[3*1+1]*q[3*1+1],
		p[3*1+0]*q[3*0+2] + p[3*1+1]*q[3*1+2] + p[3*1+2],
	}
}

func Identity() Aff3 {
	return Aff3{1, 0, 0,   0, 1, 0}
}

func (m1 Aff3)Translate(tx, ty float64) Aff3 {
	return m1.Mult(Aff3{1, 0, tx,   0, 1, ty})
}

func (m1 Aff3)Rotate(thetaDeg float64) Aff3 {
	cosTheta := math.Cos(thetaDeg * math.Pi / 180.0)
	sinTheta := math.Sin(thetaDeg * math.Pi / 180.0)
	return m1.Mult(Aff3{cosTheta, -1*sinTheta, 0,    sinTheta, cosTheta, 0})
}

// Apply maps a point through the transform.
func (m Aff3)Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}

// ProfileFrame returns the transform that takes a pixel position into
// the frame of a profile centred at (x0,y0), with its major axis at
// position angle pa. imfit measures PA in degrees counter-clockwise
// from the +y axis, so the major axis sits at pa+90 from +x.
//
// Remember they compose back to front - rightmost operations performed first
func ProfileFrame(x0, y0, pa float64) Aff3 {
	return Identity().Rotate(-1*(pa + 90.0)).Translate(-1*x0, -1*y0)
}

func (m Aff3)String() string {
	return fmt.Sprintf("[%8.4f %8.4f %8.4f | %8.4f %8.4f %8.4f]", m[0], m[1], m[2], m[3], m[4], m[5])
}
