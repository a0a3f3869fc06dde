// Package pricing holds the pure pricing rules shared by the replenishment and
// fulfillment engines: promotional discount resolution, the volume (loyalty)
// multiplier, supplier cost projection, purchase priority and the final price choice.
//
// Nothing here touches storage. Engines receive the rules through their constructors.
package pricing
